package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/grabdoc/internal/atomicfile"
)

// FilePerms is the mode of exported files.
const FilePerms = 0o644

// DirPerms is the mode of destination directories Download has to create.
const DirPerms = 0o755

// Options configures Download.
type Options struct {
	// ChunkSize is the range size per request. Zero selects DefaultChunkSize.
	ChunkSize int64
	// OnProgress is called after every chunk, including the final one.
	OnProgress func(Progress)
	Logger     *slog.Logger
}

// Result describes a completed export.
type Result struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Download pulls every chunk from src and, only after the final one, writes
// the assembled content to dest, replacing any existing file. On error dest
// is left untouched.
func Download(ctx context.Context, src ChunkSource, dest string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	stream := NewStream(src, opts.ChunkSize)

	for !stream.Done() {
		p, err := stream.Next(ctx)
		if err != nil {
			return nil, err
		}

		logger.Debug("chunk received",
			slog.Int64("received", p.Received),
			slog.Int64("total", p.Total),
			slog.Bool("final", p.Final),
		)

		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}

	data := stream.Bytes()

	if err := atomicfile.WriteFile(dest, data, FilePerms, DirPerms); err != nil {
		return nil, fmt.Errorf("export: writing %s: %w", dest, err)
	}

	logger.Info("export written",
		slog.String("path", dest),
		slog.Int("bytes", len(data)),
	)

	return &Result{Path: dest, Size: int64(len(data))}, nil
}

// extensions maps export MIME types to file extensions.
var extensions = map[string]string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"application/vnd.oasis.opendocument.text":                                   ".odt",
	"application/vnd.oasis.opendocument.spreadsheet":                            ".ods",
	"application/pdf":      ".pdf",
	"application/rtf":      ".rtf",
	"application/epub+zip": ".epub",
	"text/plain":           ".txt",
	"text/html":            ".html",
	"text/csv":             ".csv",
	"text/markdown":        ".md",
}

// Extension returns the file extension for an export MIME type, or "".
func Extension(mimeType string) string {
	return extensions[mimeType]
}

// DefaultFileName derives a local file name from a document name: NFC
// normalized, path separators and control characters replaced, with the
// extension for mimeType appended when missing. An unusable name yields
// "out" plus the extension.
func DefaultFileName(name, mimeType string) string {
	name = norm.NFC.String(strings.TrimSpace(name))

	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == filepath.Separator:
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, name)

	if name == "" || name == "." || name == ".." {
		name = "out"
	}

	ext := Extension(mimeType)
	if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}

	return name
}
