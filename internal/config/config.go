// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for grabdoc. Values are layered:
// defaults -> config file -> environment -> CLI flags.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Auth    AuthConfig    `toml:"auth"`
	Export  ExportConfig  `toml:"export"`
	Fetch   FetchConfig   `toml:"fetch"`
	Logging LoggingConfig `toml:"logging"`
	Network NetworkConfig `toml:"network"`
}

// AuthConfig locates the OAuth client and the persisted token. When
// client_id is set it wins over client_secret_file.
type AuthConfig struct {
	ClientSecretFile string   `toml:"client_secret_file"`
	ClientID         string   `toml:"client_id"`
	ClientSecret     string   `toml:"client_secret"`
	TokenFile        string   `toml:"token_file"`
	Scopes           []string `toml:"scopes"`
}

// ExportConfig names the document the grab command exports and how.
type ExportConfig struct {
	FileID    string `toml:"file_id"`
	MimeType  string `toml:"mime_type"`
	Output    string `toml:"output"`
	ChunkSize string `toml:"chunk_size"`
}

// FetchConfig is the published document the fetch command downloads. URL
// wins over Key.
type FetchConfig struct {
	URL string `toml:"url"`
	Key string `toml:"key"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	LogLevel string `toml:"log_level"`
}

// NetworkConfig controls HTTP client behavior. An empty user_agent sends
// "grabdoc/<version>"; an empty drive_endpoint uses Google's Drive API.
type NetworkConfig struct {
	Timeout       string `toml:"timeout"`
	UserAgent     string `toml:"user_agent"`
	DriveEndpoint string `toml:"drive_endpoint"`
}

// CLIOverrides holds values from CLI flags. Empty strings mean "not
// specified".
type CLIOverrides struct {
	ConfigPath string // --config
	MimeType   string // export --mime-type
	Output     string // export destination argument
	FileID     string // export file-id argument
}
