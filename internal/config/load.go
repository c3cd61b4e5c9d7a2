package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Resolved is the effective configuration after every layer was applied.
// Paths are absolute or as given, with "~/" expanded, and string sizes and
// durations are parsed.
type Resolved struct {
	Config

	// ConfigPath is the file that was read, or would have been read.
	ConfigPath string
	// ChunkSize is export.chunk_size in bytes.
	ChunkSize int64
	// Timeout is network.timeout.
	Timeout time.Duration
}

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?" suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	// 1. Config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfgPath = expandTilde(cfgPath)

	// 2. File (defaults when missing)
	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	// 3. Environment
	if env.ClientID != "" {
		cfg.Auth.ClientID = env.ClientID
	}

	if env.ClientSecret != "" {
		cfg.Auth.ClientSecret = env.ClientSecret
	}

	if env.TokenFile != "" {
		cfg.Auth.TokenFile = env.TokenFile
	}

	// 4. CLI
	if cli.FileID != "" {
		cfg.Export.FileID = cli.FileID
	}

	if cli.MimeType != "" {
		cfg.Export.MimeType = cli.MimeType
	}

	if cli.Output != "" {
		cfg.Export.Output = cli.Output
	}

	// Platform defaults for paths nobody set.
	if cfg.Auth.TokenFile == "" {
		cfg.Auth.TokenFile = DefaultTokenPath()
	}

	if cfg.Auth.ClientSecretFile == "" {
		cfg.Auth.ClientSecretFile = DefaultClientSecretPath()
	}

	cfg.Auth.TokenFile = expandTilde(cfg.Auth.TokenFile)
	cfg.Auth.ClientSecretFile = expandTilde(cfg.Auth.ClientSecretFile)
	cfg.Export.Output = expandTilde(cfg.Export.Output)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	if cfg.Auth.TokenFile == "" {
		return nil, errors.New("config validation: auth.token_file: no default location, set it explicitly")
	}

	// Both already validated.
	chunkSize, _ := ParseSize(cfg.Export.ChunkSize)
	timeout, _ := time.ParseDuration(cfg.Network.Timeout)

	return &Resolved{
		Config:     *cfg,
		ConfigPath: cfgPath,
		ChunkSize:  chunkSize,
		Timeout:    timeout,
	}, nil
}
