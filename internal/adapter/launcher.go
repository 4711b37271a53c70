package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Launcher opens trailer URLs in a configured player or the system default handler
type Launcher struct {
	command string   // configured player command, empty for system default
	args    []string // additional arguments for the player
	goos    string
	logger  *slog.Logger

	start func(name string, args ...string) error
}

// NewLauncher creates a new Launcher. mpv and vlc both play YouTube URLs
// directly; anything else falls back to the OS URL handler.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		goos:    runtime.GOOS,
		logger:  logger,
		start:   startDetached,
	}
}

func startDetached(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start() // Start async, don't wait
}

// Launch opens url, preferring the configured player.
func (l *Launcher) Launch(url string) error {
	if url == "" {
		return fmt.Errorf("nothing to launch")
	}

	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("launching player", "command", l.command, "args", args)
		err := l.start(l.command, args...)
		if err == nil {
			return nil
		}
		l.logger.Warn("configured player failed, using system default", "command", l.command, "error", err)
	}

	name, args := systemOpener(l.goos, url)
	l.logger.Info("launching with system default", "os", l.goos, "url", url)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// systemOpener returns the command that opens url with the OS default handler
func systemOpener(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
