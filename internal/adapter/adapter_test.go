package adapter

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("VITE_TMDB_API_KEY", "")
	t.Setenv("CINESCOPE_TMDB_API_KEY", "")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Fatalf("BaseURL = %q", cfg.TMDB.BaseURL)
	}
	if cfg.Catalog.CacheTTL != time.Hour {
		t.Fatalf("CacheTTL = %v, want 1h", cfg.Catalog.CacheTTL)
	}
	if cfg.Storage.DataDir != filepath.Join(home, ".local", "share", "cinescope") {
		t.Fatalf("DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.IsConfigured() {
		t.Fatal("IsConfigured = true without an API key")
	}
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CINESCOPE_TMDB_API_KEY", "")
	t.Setenv("VITE_TMDB_API_KEY", "")
	dir := t.TempDir()

	yaml := strings.Join([]string{
		"tmdb:",
		"  api_key: from-file",
		"  timeout: 5s",
		"catalog:",
		"  trending_period: day",
		"  cache_ttl: 10m",
		"storage:",
		"  data_dir: ~/movies",
		"logging:",
		"  level: DEBUG",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("TMDB_API_KEY", "from-env")
	t.Setenv("CINESCOPE_LOGGING_LEVEL", "WARN")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "from-env" {
		t.Fatalf("APIKey = %q, want env to win", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v, want 5s", cfg.TMDB.Timeout)
	}
	if cfg.Catalog.TrendingPeriod != "day" || cfg.Catalog.CacheTTL != 10*time.Minute {
		t.Fatalf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Logging.Level != "WARN" {
		t.Fatalf("Logging.Level = %q, want WARN", cfg.Logging.Level)
	}
	if strings.HasPrefix(cfg.Storage.DataDir, "~") {
		t.Fatalf("DataDir not expanded: %q", cfg.Storage.DataDir)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("VITE_TMDB_API_KEY", "")
	t.Setenv("CINESCOPE_TMDB_API_KEY", "")
	dir := filepath.Join(t.TempDir(), "nested")

	cfg := DefaultConfig()
	cfg.TMDB.APIKey = "saved-key"
	cfg.UI.Theme = "light"
	if err := SaveConfig(cfg, dir); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if loaded.TMDB.APIKey != "saved-key" || loaded.UI.Theme != "light" {
		t.Fatalf("loaded = %+v / %+v", loaded.TMDB, loaded.UI)
	}
	if loaded.TMDB.Timeout != cfg.TMDB.Timeout {
		t.Fatalf("Timeout = %v, want %v", loaded.TMDB.Timeout, cfg.TMDB.Timeout)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "info"})
	if err != nil {
		t.Fatalf("SetupLogger returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("visible", "movieID", 42)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %s", out)
	}
	if !strings.Contains(out, `"msg":"visible"`) || !strings.Contains(out, `"movieID":42`) {
		t.Fatalf("log output = %s", out)
	}
}

func TestLauncher_PrefersConfiguredPlayer(t *testing.T) {
	var calls []string
	l := NewLauncher("mpv", []string{"--fs"}, NullLogger())
	l.start = func(name string, args ...string) error {
		calls = append(calls, name+" "+strings.Join(args, " "))
		return nil
	}

	if err := l.Launch("https://www.youtube.com/watch?v=abc"); err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if len(calls) != 1 || calls[0] != "mpv --fs https://www.youtube.com/watch?v=abc" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestLauncher_FallsBackToSystemDefault(t *testing.T) {
	var calls []string
	l := NewLauncher("missing-player", nil, NullLogger())
	l.goos = "linux"
	l.start = func(name string, args ...string) error {
		calls = append(calls, name)
		if name == "missing-player" {
			return errors.New("not found")
		}
		return nil
	}

	if err := l.Launch("https://example.com"); err != nil {
		t.Fatalf("Launch returned error: %v", err)
	}
	if len(calls) != 2 || calls[1] != "xdg-open" {
		t.Fatalf("calls = %v, want fallback to xdg-open", calls)
	}

	if err := l.Launch(""); err == nil {
		t.Fatal("Launch(\"\") succeeded, want error")
	}
}

func TestSystemOpener(t *testing.T) {
	if name, _ := systemOpener("darwin", "u"); name != "open" {
		t.Fatalf("darwin opener = %q", name)
	}
	if name, args := systemOpener("windows", "u"); name != "cmd" || args[len(args)-1] != "u" {
		t.Fatalf("windows opener = %q %v", name, args)
	}
}
