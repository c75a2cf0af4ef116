// Package browser opens URLs in the system's default web browser. It wraps
// the open-golang library with platform-specific fallbacks and exposes the
// capability probe the login flow uses to pick its transport.
package browser

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/skratchdot/open-golang/open"
)

// linuxBrowsers are tried in order when open-golang fails on Linux.
var linuxBrowsers = []string{"xdg-open", "x-www-browser", "www-browser", "firefox", "chromium", "google-chrome"}

// OpenURL opens url in the default web browser. It first attempts the
// open-golang library and falls back to platform-specific commands.
func OpenURL(url string) error {
	if err := open.Run(url); err == nil {
		return nil
	}
	return openPlatformSpecific(url)
}

func openPlatformSpecific(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux":
		for _, b := range linuxBrowsers {
			if _, err := exec.LookPath(b); err == nil {
				cmd = exec.Command(b, url)
				break
			}
		}
		if cmd == nil {
			return fmt.Errorf("no suitable browser found")
		}
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	slog.Debug("opening URL with platform command", "command", cmd.Path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start browser command: %w", err)
	}
	return nil
}

// IsAvailable reports whether the system can open a web browser at all.
// Checked before selecting the external-window login transport.
func IsAvailable() bool {
	switch runtime.GOOS {
	case "darwin":
		_, err := exec.LookPath("open")
		return err == nil
	case "windows":
		_, err := exec.LookPath("rundll32")
		return err == nil
	case "linux":
		for _, b := range linuxBrowsers {
			if _, err := exec.LookPath(b); err == nil {
				return true
			}
		}
		return false
	default:
		return false
	}
}
