package config

// Default values, the first layer of the override chain. They reproduce the
// original one-shot script: full Drive scope, the sample document exported
// as .docx into out.docx, and the sample published spreadsheet key.
const (
	defaultScope     = "https://www.googleapis.com/auth/drive"
	defaultFileID    = "1SMzWMEmFuU1hup492dL4VL4LpXWfnUgqsZEgIJAUjBs"
	defaultMimeType  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	defaultOutput    = "out.docx"
	defaultChunkSize = "100MiB"
	defaultFetchKey  = "0ArM5yzzCw9IZdEdLWlpHT1FCcUpYQ2RjWmZYWmNwbXc"
	defaultLogLevel  = "warn"
	defaultTimeout   = "60s"
)

// DefaultConfig returns a Config populated with all default values. It is
// the starting point for TOML decoding, so unset fields keep their defaults.
// File paths stay empty here and are filled from the platform directories
// by Resolve.
func DefaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			Scopes: []string{defaultScope},
		},
		Export: ExportConfig{
			FileID:    defaultFileID,
			MimeType:  defaultMimeType,
			Output:    defaultOutput,
			ChunkSize: defaultChunkSize,
		},
		Fetch: FetchConfig{
			Key: defaultFetchKey,
		},
		Logging: LoggingConfig{
			LogLevel: defaultLogLevel,
		},
		Network: NetworkConfig{
			Timeout: defaultTimeout,
		},
	}
}
