package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig       = "GRABDOC_CONFIG"
	EnvClientID     = "GRABDOC_CLIENT_ID"
	EnvClientSecret = "GRABDOC_CLIENT_SECRET"
	EnvTokenFile    = "GRABDOC_TOKEN_FILE"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath   string // GRABDOC_CONFIG: config file path
	ClientID     string // GRABDOC_CLIENT_ID: OAuth client ID
	ClientSecret string // GRABDOC_CLIENT_SECRET: OAuth client secret
	TokenFile    string // GRABDOC_TOKEN_FILE: persisted credential path
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		TokenFile:    os.Getenv(EnvTokenFile),
	}
}
