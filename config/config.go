// Package config loads and persists the SenAI client settings: the JSON
// config file kept beside the executable and the .env-based API key
// discovery.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/tranvanmanh9325/SenAI/jsonparser"
)

// FileName is the settings file looked up beside the executable.
const FileName = "senai.config.json"

// EnvAPIKey is the environment variable and .env key holding the backend
// API key.
const EnvAPIKey = "API_KEY"

// Config is the on-disk client configuration. CtrlEnterToSend is carried
// for front ends that bind a send shortcut; the CLI ignores it.
type Config struct {
	BaseURL         string
	APIKey          string
	CtrlEnterToSend bool
}

// DefaultPath returns the config file beside the executable, falling back
// to the working directory when the executable path cannot be resolved.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// Load reads the config file at path. A missing or unreadable file yields
// zero values with CtrlEnterToSend defaulting on; malformed fields fall
// back independently.
func Load(path string) Config {
	cfg := Config{CtrlEnterToSend: true}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	content := string(data)
	cfg.BaseURL = jsonparser.GetString(content, "baseUrl", "")
	cfg.APIKey = jsonparser.GetString(content, "apiKey", "")
	cfg.CtrlEnterToSend = jsonparser.GetBool(content, "ctrlEnterToSend", true)
	return cfg
}

// Save writes the config file, replacing any previous contents. Booleans
// are stored as strings for compatibility with existing config files.
func Save(path string, cfg Config) error {
	ctrlEnter := "false"
	if cfg.CtrlEnterToSend {
		ctrlEnter = "true"
	}
	out := map[string]string{
		"baseUrl":         cfg.BaseURL,
		"apiKey":          cfg.APIKey,
		"ctrlEnterToSend": ctrlEnter,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// LoadAPIKey resolves the backend API key: the first .env file carrying
// one wins, searched at the working directory and at the executable's
// directory plus up to three parent levels. Falls back to the process
// environment.
func LoadAPIKey() string {
	if key := keyFromEnvFiles(envFilePaths(), EnvAPIKey); key != "" {
		return key
	}
	return os.Getenv(EnvAPIKey)
}

func envFilePaths() []string {
	paths := []string{".env"}
	exe, err := os.Executable()
	if err != nil {
		return paths
	}
	dir := filepath.Dir(exe)
	for _, rel := range []string{".", "..", "../..", "../../.."} {
		paths = append(paths, filepath.Join(dir, rel, ".env"))
	}
	return paths
}

func keyFromEnvFiles(paths []string, key string) string {
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		if value := vars[key]; value != "" {
			return value
		}
	}
	return ""
}
