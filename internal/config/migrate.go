package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// EnvAPIKey is the environment variable (and legacy .env entry) holding the API key
const EnvAPIKey = "ANTHROPIC_API_KEY"

// LegacyEnvPath returns the .env file that older versions kept next to the executable
func LegacyEnvPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), ".env")
}

// MigrateEnv reads ANTHROPIC_API_KEY from a legacy .env file.
// It returns "" when the file or the entry is missing.
func MigrateEnv(path string) string {
	if path == "" {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != EnvAPIKey {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		return value
	}
	return ""
}
