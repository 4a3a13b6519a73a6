package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath   string `yaml:"db_path"`
	Registry string `yaml:"registry"`
	FolderID string `yaml:"folder_id"`

	// RemoteBackend selects the document store: "fs", "s3" or "webapi".
	RemoteBackend string `yaml:"remote_backend"`
	RemotePath    string `yaml:"remote_path"` // fs backend base directory
	APIBaseURL    string `yaml:"api_base_url"`
	APIToken      string `yaml:"api_token"`
	APITokenEnv   string `yaml:"api_token_env"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Load builds the configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		DBPath:        getEnv("PANTRYSYNC_DB_PATH", "pantrysync.db"),
		Registry:      getEnv("PANTRYSYNC_REGISTRY", "pantry"),
		FolderID:      getEnv("PANTRYSYNC_FOLDER_ID", "pantrysync"),
		RemoteBackend: getEnv("PANTRYSYNC_REMOTE_BACKEND", "fs"),
		RemotePath:    getEnv("PANTRYSYNC_REMOTE_PATH", "remote"),
		APIBaseURL:    getEnv("PANTRYSYNC_API_BASE_URL", ""),
		APIToken:      getEnv("PANTRYSYNC_API_TOKEN", ""),
		APITokenEnv:   getEnv("PANTRYSYNC_API_TOKEN_ENV", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}
}

// LoadFile builds the configuration from the environment, then overlays the
// YAML file at path. Fields absent from the file keep their environment or
// default values.
func LoadFile(path string) (*Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
