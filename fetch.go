package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/grabdoc/internal/fetch"
)

var (
	flagFetchKey string
	flagTable    bool
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Download a published document as CSV without signing in",
		Long: "Fetches a publicly published document anonymously and prints the body.\n" +
			"The URL comes from the argument, --key, [fetch] url, or [fetch] key, in\n" +
			"that order. Any status other than 200 is an error.",
		Args: cobra.MaximumNArgs(1),
		RunE: runFetch,
	}

	cmd.Flags().StringVar(&flagFetchKey, "key", "", "published document key")
	cmd.Flags().BoolVar(&flagTable, "table", false, "render the CSV as an aligned table")

	return cmd
}

// fetchOutput is the JSON schema for `fetch --json`.
type fetchOutput struct {
	URL     string     `json:"url"`
	Records [][]string `json:"records"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	url, err := resolveFetchURL(args)
	if err != nil {
		return err
	}

	body, err := fetch.New(newHTTPClient(), userAgent(), logger).FetchCSV(ctx, url)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if !flagTable && !flagJSON {
		_, err := w.Write(body)
		return err
	}

	records, err := fetch.ParseCSV(body)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(w, fetchOutput{URL: url, Records: records})
	}

	printTable(w, nil, records)

	return nil
}

// resolveFetchURL picks the URL: argument, --key, [fetch] url, [fetch] key.
func resolveFetchURL(args []string) (string, error) {
	switch {
	case len(args) > 0:
		return args[0], nil
	case flagFetchKey != "":
		return fetch.PublishedCSVURL(flagFetchKey), nil
	case resolvedCfg.Fetch.URL != "":
		return resolvedCfg.Fetch.URL, nil
	case resolvedCfg.Fetch.Key != "":
		return fetch.PublishedCSVURL(resolvedCfg.Fetch.Key), nil
	default:
		return "", errors.New("no URL: pass one, use --key, or set [fetch] url or key")
	}
}
