package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	in := Config{
		BaseURL:         "http://localhost:9000",
		APIKey:          "secret",
		CtrlEnterToSend: false,
	}
	require.NoError(t, Save(path, in))

	out := Load(path)
	assert.Equal(t, in, out)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Equal(t, Config{CtrlEnterToSend: true}, cfg)
}

func TestLoadMalformedFieldsFallBackIndependently(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"baseUrl":"http://h","apiKey":42,"ctrlEnterToSend":"true"}`), 0o600))

	cfg := Load(path)
	assert.Equal(t, "http://h", cfg.BaseURL)
	assert.Equal(t, "42", cfg.APIKey, "non-string value degrades to its JSON form")
	assert.True(t, cfg.CtrlEnterToSend)
}

func TestLoadGarbageFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`not json at all`), 0o600))

	cfg := Load(path)
	assert.Equal(t, Config{CtrlEnterToSend: true}, cfg)
}

func TestKeyFromEnvFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("OTHER=x\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("API_KEY=from-second\n"), 0o600))

	key := keyFromEnvFiles([]string{
		filepath.Join(dir, "missing.env"),
		first,
		second,
	}, EnvAPIKey)
	assert.Equal(t, "from-second", key, "first file carrying the key wins, missing files are skipped")
}

func TestKeyFromEnvFilesQuotedValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_KEY=\"quoted-key\"\n"), 0o600))

	assert.Equal(t, "quoted-key", keyFromEnvFiles([]string{path}, EnvAPIKey))
}

func TestLoadAPIKeyEnvFallback(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")
	// Run from a directory without a .env so the file search misses.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.Equal(t, "from-env", LoadAPIKey())
}
