package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openBrowser launches the platform URL handler on url without waiting
// for it to exit.
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	// Reap the child so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()

	return nil
}
