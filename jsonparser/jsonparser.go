// Package jsonparser provides tolerant access to JSON documents: every
// accessor returns the caller-supplied default on missing, null, or
// type-mismatched fields and never panics or returns an error. Parse
// failures are reported to the error log, not to the caller.
package jsonparser

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/tranvanmanh9325/SenAI/errorhandler"
)

var (
	mu      sync.RWMutex
	handler *errorhandler.Handler
)

// SetHandler installs the sink for parse-failure warnings. Set once at
// startup; without one, warnings are dropped and accessors still work.
func SetHandler(h *errorhandler.Handler) {
	mu.Lock()
	handler = h
	mu.Unlock()
}

func logWarning(message, context string) {
	mu.RLock()
	h := handler
	mu.RUnlock()
	if h != nil {
		h.Log(errorhandler.CategoryJSON, errorhandler.SeverityWarning, message, context)
	}
}

// previewLimit bounds how much of a malformed input ends up in the log.
const previewLimit = 200

func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit] + "..."
	}
	return s
}

// Parse decodes a JSON document into maps, slices, strings, json.Number,
// bools, and nil. ok is false for empty or malformed input; the failure
// is logged with a truncated preview of the input.
func Parse(text string) (doc any, ok bool) {
	if text == "" {
		logWarning("Empty JSON string provided", "jsonparser.Parse")
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		logWarning("JSON parse error: "+err.Error()+" - Input preview: "+preview(text), "jsonparser.Parse")
		return nil, false
	}
	if dec.More() {
		logWarning("JSON parse error: trailing data after document - Input preview: "+preview(text), "jsonparser.Parse")
		return nil, false
	}
	return doc, true
}

// IsValid reports whether text parses as JSON. Malformed input still logs
// a warning.
func IsValid(text string) bool {
	_, ok := Parse(text)
	return ok
}

// GetString returns the named top-level field as a string. A null value or
// any lookup failure yields defaultValue; a non-string value degrades to
// its JSON serialization.
func GetString(text, field, defaultValue string) string {
	value, ok := topLevelField(text, field)
	if !ok {
		return defaultValue
	}
	return stringify(value, defaultValue)
}

// GetInt returns the named top-level field as an int. Accepts integral
// JSON numbers and numeric strings; everything else yields defaultValue.
func GetInt(text, field string, defaultValue int) int {
	value, ok := topLevelField(text, field)
	if !ok {
		return defaultValue
	}
	return intify(value, defaultValue)
}

// GetBool returns the named top-level field as a bool. Accepts JSON
// booleans, the strings "true" and "1", and numbers (non-zero is true).
func GetBool(text, field string, defaultValue bool) bool {
	value, ok := topLevelField(text, field)
	if !ok {
		return defaultValue
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return defaultValue
		}
		return f != 0
	default:
		return defaultValue
	}
}

// GetNestedString walks a dot-separated path of object keys and returns
// the value at the end as a string. Any missing segment or non-object
// intermediate yields defaultValue.
func GetNestedString(text, path, defaultValue string) string {
	doc, ok := Parse(text)
	if !ok {
		return defaultValue
	}
	current := doc
	for _, segment := range strings.Split(path, ".") {
		obj, isObj := current.(map[string]any)
		if !isObj {
			return defaultValue
		}
		value, found := obj[segment]
		if !found {
			return defaultValue
		}
		current = value
	}
	return stringify(current, defaultValue)
}

// ParseArray returns the elements of a JSON array document. A document
// whose root is not an array yields an empty sequence and a warning.
func ParseArray(text string) []any {
	doc, ok := Parse(text)
	if !ok {
		return nil
	}
	arr, isArr := doc.([]any)
	if !isArr {
		logWarning("JSON is not an array - Input preview: "+preview(text), "jsonparser.ParseArray")
		return nil
	}
	return arr
}

// FieldString reads a string field from an already-parsed document, such
// as a ParseArray element.
func FieldString(doc any, field, defaultValue string) string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return defaultValue
	}
	value, found := obj[field]
	if !found {
		return defaultValue
	}
	return stringify(value, defaultValue)
}

// FieldInt reads an int field from an already-parsed document.
func FieldInt(doc any, field string, defaultValue int) int {
	obj, ok := doc.(map[string]any)
	if !ok {
		return defaultValue
	}
	value, found := obj[field]
	if !found {
		return defaultValue
	}
	return intify(value, defaultValue)
}

// BuildJSON serializes string pairs into a JSON object. Returns "{}" when
// serialization fails.
func BuildJSON(pairs map[string]string) string {
	if pairs == nil {
		pairs = map[string]string{}
	}
	data, err := marshalNoEscape(pairs)
	if err != nil {
		logWarning("Error building JSON: "+err.Error(), "jsonparser.BuildJSON")
		return "{}"
	}
	return string(data)
}

// EscapeJSON escapes a bare string for embedding inside a hand-built JSON
// document, without the surrounding quotes.
func EscapeJSON(s string) string {
	data, err := marshalNoEscape(s)
	if err != nil {
		logWarning("Error escaping JSON string: "+err.Error(), "jsonparser.EscapeJSON")
		return s
	}
	return string(data[1 : len(data)-1])
}

func topLevelField(text, field string) (any, bool) {
	doc, ok := Parse(text)
	if !ok {
		return nil, false
	}
	obj, isObj := doc.(map[string]any)
	if !isObj {
		return nil, false
	}
	value, found := obj[field]
	return value, found
}

func stringify(value any, defaultValue string) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return defaultValue
	case json.Number:
		return v.String()
	default:
		data, err := marshalNoEscape(v)
		if err != nil {
			return defaultValue
		}
		return string(data)
	}
}

func intify(value any, defaultValue int) int {
	switch v := value.(type) {
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return defaultValue
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return defaultValue
		}
		return n
	default:
		return defaultValue
	}
}

// marshalNoEscape is json.Marshal without HTML escaping, so field values
// round-trip byte for byte.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
