package jsonparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc, ok := Parse(`{"status":"ok","count":2}`)
	require.True(t, ok)
	obj, isObj := doc.(map[string]any)
	require.True(t, isObj)
	assert.Equal(t, "ok", obj["status"])

	_, ok = Parse("")
	assert.False(t, ok)

	_, ok = Parse(`{"broken":`)
	assert.False(t, ok)

	_, ok = Parse(`{"a":1} trailing`)
	assert.False(t, ok)
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		field        string
		defaultValue string
		want         string
	}{
		{"Present", `{"model":"llama3"}`, "model", "dflt", "llama3"},
		{"Missing", `{"model":"llama3"}`, "other", "dflt", "dflt"},
		{"Null", `{"model":null}`, "model", "dflt", "dflt"},
		{"NumberDegrades", `{"model":42}`, "model", "dflt", "42"},
		{"BoolDegrades", `{"flag":true}`, "flag", "dflt", "true"},
		{"ObjectDegrades", `{"obj":{"a":1}}`, "obj", "dflt", `{"a":1}`},
		{"Malformed", `{"model":`, "model", "dflt", "dflt"},
		{"Empty", ``, "model", "dflt", "dflt"},
		{"NonObjectRoot", `[1,2,3]`, "model", "dflt", "dflt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetString(tt.text, tt.field, tt.defaultValue))
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		field        string
		defaultValue int
		want         int
	}{
		{"Integer", `{"id":7}`, "id", -1, 7},
		{"Negative", `{"id":-3}`, "id", -1, -3},
		{"NumericString", `{"id":"42"}`, "id", -1, 42},
		{"Float", `{"id":3.5}`, "id", -1, -1},
		{"NonNumericString", `{"id":"abc"}`, "id", -1, -1},
		{"Missing", `{}`, "id", -1, -1},
		{"Null", `{"id":null}`, "id", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetInt(tt.text, tt.field, tt.defaultValue))
		})
	}
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		field        string
		defaultValue bool
		want         bool
	}{
		{"True", `{"on":true}`, "on", false, true},
		{"False", `{"on":false}`, "on", true, false},
		{"StringTrue", `{"on":"true"}`, "on", false, true},
		{"StringOne", `{"on":"1"}`, "on", false, true},
		{"StringOther", `{"on":"yes"}`, "on", true, false},
		{"NumberNonZero", `{"on":2}`, "on", false, true},
		{"NumberZero", `{"on":0}`, "on", true, false},
		{"Missing", `{}`, "on", true, true},
		{"Null", `{"on":null}`, "on", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetBool(tt.text, tt.field, tt.defaultValue))
		})
	}
}

func TestGetNestedString(t *testing.T) {
	health := `{"llm":{"model":"llama3","provider":"ollama"},"status":"healthy"}`

	assert.Equal(t, "llama3", GetNestedString(health, "llm.model", ""))
	assert.Equal(t, "healthy", GetNestedString(health, "status", ""))
	assert.Equal(t, "dflt", GetNestedString(health, "llm.missing", "dflt"))
	assert.Equal(t, "dflt", GetNestedString(health, "status.model", "dflt"), "non-object intermediate")
	assert.Equal(t, "dflt", GetNestedString(health, "other.model", "dflt"))
	assert.Equal(t, "dflt", GetNestedString(`not json`, "llm.model", "dflt"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(`{"a":1}`))
	assert.True(t, IsValid(`[1,2]`))
	assert.True(t, IsValid(`"bare string"`))
	assert.False(t, IsValid(``))
	assert.False(t, IsValid(`{`))
}

func TestParseArray(t *testing.T) {
	arr := ParseArray(`[{"id":1},{"id":2}]`)
	require.Len(t, arr, 2)
	assert.Equal(t, 1, FieldInt(arr[0], "id", -1))
	assert.Equal(t, 2, FieldInt(arr[1], "id", -1))

	assert.Empty(t, ParseArray(`{"not":"an array"}`))
	assert.Empty(t, ParseArray(`broken`))
	assert.Empty(t, ParseArray(``))
	assert.Empty(t, ParseArray(`[]`))
}

func TestFieldAccessors(t *testing.T) {
	arr := ParseArray(`[{"task_name":"build","id":3,"status":null}]`)
	require.Len(t, arr, 1)

	assert.Equal(t, "build", FieldString(arr[0], "task_name", ""))
	assert.Equal(t, "dflt", FieldString(arr[0], "status", "dflt"))
	assert.Equal(t, "dflt", FieldString(arr[0], "missing", "dflt"))
	assert.Equal(t, 3, FieldInt(arr[0], "id", -1))
	assert.Equal(t, -1, FieldInt(arr[0], "task_name", -1))
	assert.Equal(t, "dflt", FieldString("not an object", "x", "dflt"))
}

func TestBuildJSON(t *testing.T) {
	out := BuildJSON(map[string]string{"user_message": "hi & bye"})
	doc, ok := Parse(out)
	require.True(t, ok)
	obj := doc.(map[string]any)
	assert.Equal(t, "hi & bye", obj["user_message"])

	assert.Equal(t, "{}", BuildJSON(nil), "nil map serializes to an empty object or the fallback")
}

func TestEscapeJSON(t *testing.T) {
	assert.Equal(t, `plain`, EscapeJSON("plain"))
	assert.Equal(t, `say \"hi\"`, EscapeJSON(`say "hi"`))
	assert.Equal(t, `line\nbreak`, EscapeJSON("line\nbreak"))
	assert.Equal(t, `back\\slash`, EscapeJSON(`back\slash`))
}
