package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadEnvOverrides_AllSet(t *testing.T) {
	t.Setenv(EnvConfig, "/custom/config.toml")
	t.Setenv(EnvClientID, "cid")
	t.Setenv(EnvClientSecret, "csecret")
	t.Setenv(EnvTokenFile, "/custom/token.json")

	overrides := ReadEnvOverrides()
	assert.Equal(t, "/custom/config.toml", overrides.ConfigPath)
	assert.Equal(t, "cid", overrides.ClientID)
	assert.Equal(t, "csecret", overrides.ClientSecret)
	assert.Equal(t, "/custom/token.json", overrides.TokenFile)
}

func TestReadEnvOverrides_NoneSet(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
	t.Setenv(EnvTokenFile, "")

	assert.Equal(t, EnvOverrides{}, ReadEnvOverrides())
}

func TestEnvVarConstants(t *testing.T) {
	assert.Equal(t, "GRABDOC_CONFIG", EnvConfig)
	assert.Equal(t, "GRABDOC_TOKEN_FILE", EnvTokenFile)
}
