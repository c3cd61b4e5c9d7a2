package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/grabdoc/internal/drive"
	"github.com/tonimelisma/grabdoc/internal/export"
)

// grabPageSize is how many files the grab command lists before exporting.
const grabPageSize = 10

var flagPageSize int

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List files in Google Drive",
		Args:  cobra.NoArgs,
		RunE:  runLs,
	}

	cmd.Flags().IntVar(&flagPageSize, "page-size", grabPageSize, "maximum number of files to list")

	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file-id> [dest]",
		Short: "Export a Google document to a local file",
		Long: "Exports the document in the configured MIME type, downloading it in\n" +
			"chunks with progress. Without dest the file is named after the document.\n" +
			"The destination is written only once every chunk has arrived.",
		Args: cobra.RangeArgs(1, 2),
		RunE: runExport,
	}

	// Read by loadConfig as a CLI override of export.mime_type.
	cmd.Flags().String("mime-type", "", "export MIME type (default from config)")

	return cmd
}

func newGrabCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grab",
		Short: "Sign in, list files, and export the configured document",
		Long: "Runs the whole workflow: obtain credentials, list up to 10 files, and\n" +
			"export [export] file_id as [export] mime_type to [export] output.",
		Args: cobra.NoArgs,
		RunE: runGrab,
	}
}

func runLs(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	s, err := newSession(ctx, logger)
	if err != nil {
		return err
	}

	files, err := s.drive.ListFiles(ctx, flagPageSize)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), files)
	}

	printFiles(cmd.OutOrStdout(), files)

	return nil
}

// printFiles writes the listing as "name (id)" lines.
func printFiles(w io.Writer, files []drive.FileMetadata) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files found.")
		return
	}

	fmt.Fprintln(w, "Files:")

	for _, f := range files {
		fmt.Fprintf(w, "%s (%s)\n", f.Name, f.ID)
	}
}

// exportOutput is the JSON schema for a completed export.
type exportOutput struct {
	FileID   string `json:"file_id"`
	MimeType string `json:"mime_type"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	s, err := newSession(ctx, logger)
	if err != nil {
		return err
	}

	// loadConfig applied the positional arguments to the export section.
	fileID := resolvedCfg.Export.FileID
	mimeType := resolvedCfg.Export.MimeType

	var dest string
	if len(args) > 1 {
		dest = resolvedCfg.Export.Output
	} else {
		meta, err := s.drive.File(ctx, fileID)
		if err != nil {
			return err
		}

		dest = export.DefaultFileName(meta.Name, mimeType)
		logger.Debug("derived destination from document name",
			slog.String("name", meta.Name),
			slog.String("dest", dest),
		)
	}

	out, err := exportDocument(ctx, s, fileID, mimeType, dest, newProgressPrinter(cmd.ErrOrStderr()), logger)
	if err != nil {
		return err
	}

	return reportExport(cmd.OutOrStdout(), out)
}

// grabOutput is the JSON schema for `grab --json`.
type grabOutput struct {
	Files  []drive.FileMetadata `json:"files"`
	Export exportOutput         `json:"export"`
}

func runGrab(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	if resolvedCfg.Export.FileID == "" {
		return fmt.Errorf("no document configured: set [export] file_id")
	}

	s, err := newSession(ctx, logger)
	if err != nil {
		return err
	}

	files, err := s.drive.ListFiles(ctx, grabPageSize)
	if err != nil {
		return err
	}

	if !flagJSON {
		printFiles(cmd.OutOrStdout(), files)
	}

	e := resolvedCfg.Export

	out, err := exportDocument(ctx, s, e.FileID, e.MimeType, e.Output, newProgressPrinter(cmd.ErrOrStderr()), logger)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), grabOutput{Files: files, Export: *out})
	}

	return reportExport(cmd.OutOrStdout(), out)
}

// exportDocument downloads fileID in chunks and writes it to dest.
func exportDocument(
	ctx context.Context, s *session, fileID, mimeType, dest string, pp *progressPrinter, logger *slog.Logger,
) (*exportOutput, error) {
	logger.Info("export started",
		slog.String("file_id", fileID),
		slog.String("mime_type", mimeType),
		slog.String("dest", dest),
	)

	res, err := export.Download(ctx, s.drive.Exporter(fileID, mimeType), dest, export.Options{
		ChunkSize:  resolvedCfg.ChunkSize,
		OnProgress: pp.Report,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", fileID, err)
	}

	return &exportOutput{FileID: fileID, MimeType: mimeType, Path: res.Path, Size: res.Size}, nil
}

func reportExport(w io.Writer, out *exportOutput) error {
	if flagJSON {
		return printJSON(w, out)
	}

	statusf("Exported %s to %s (%s)\n", out.FileID, out.Path, formatSize(out.Size))

	return nil
}
