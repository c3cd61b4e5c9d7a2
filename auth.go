package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize grabdoc with Google Drive",
		Long: "Loads the saved credential, refreshes it if expired, or opens a browser\n" +
			"for Google's consent page when none is usable. The result is saved to the\n" +
			"token file.",
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved token file",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the Google account grabdoc is signed in as",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
}

// loginOutput is the JSON schema for `login --json`.
type loginOutput struct {
	TokenFile string    `json:"token_file"`
	Scopes    []string  `json:"scopes"`
	Expiry    time.Time `json:"expiry"`
}

func runLogin(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	mgr, err := newAuthManager(logger)
	if err != nil {
		return err
	}

	cred, err := mgr.Obtain(ctx)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), loginOutput{
			TokenFile: resolvedCfg.Auth.TokenFile,
			Scopes:    cred.Scopes,
			Expiry:    cred.Token.Expiry,
		})
	}

	statusf("Login successful. Token saved to %s\n", resolvedCfg.Auth.TokenFile)

	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	mgr, err := newAuthManager(logger)
	if err != nil {
		return err
	}

	if err := mgr.Logout(); err != nil {
		return err
	}

	statusf("Logged out.\n")

	return nil
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	TokenFile   string `json:"token_file"`
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	s, err := newSession(ctx, logger)
	if err != nil {
		return err
	}

	user, err := s.drive.About(ctx)
	if err != nil {
		return fmt.Errorf("fetching user: %w", err)
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), whoamiOutput{
			DisplayName: user.DisplayName,
			Email:       user.Email,
			TokenFile:   resolvedCfg.Auth.TokenFile,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "User:  %s (%s)\n", user.DisplayName, user.Email)
	fmt.Fprintf(cmd.OutOrStdout(), "Token: %s\n", resolvedCfg.Auth.TokenFile)

	return nil
}
