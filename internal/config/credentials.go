package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// credentialsFile mirrors the YAML schema of credentials.yaml. Every field
// can be overridden by the environment variable of the same name, uppercased.
type credentialsFile struct {
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresDatabase string `yaml:"postgres_database"`
}

// loadCredentials reads the optional credentials file and applies the
// environment overlay. Environment values win over file values.
func loadCredentials(path string, environ map[string]string) (credentialsFile, error) {
	var creds credentialsFile

	if path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return creds, &InvalidFileError{Path: path, Err: err}
			}
		} else if err := yaml.Unmarshal(src, &creds); err != nil {
			return creds, &InvalidFileError{Path: path, Err: err}
		}
	}

	if v, ok := environ["POSTGRES_USER"]; ok {
		creds.PostgresUser = v
	}
	if v, ok := environ["POSTGRES_PASSWORD"]; ok {
		creds.PostgresPassword = v
	}
	if v, ok := environ["POSTGRES_HOST"]; ok {
		creds.PostgresHost = v
	}
	if v, ok := environ["POSTGRES_PORT"]; ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return creds, &InvalidFileError{Path: "POSTGRES_PORT", Err: err}
		}
		creds.PostgresPort = port
	}
	if v, ok := environ["POSTGRES_DATABASE"]; ok {
		creds.PostgresDatabase = v
	}

	if creds.PostgresPort == 0 {
		creds.PostgresPort = 5432
	}
	return creds, nil
}
