package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/cinescope/internal/adapter"
	"github.com/mmcdole/cinescope/internal/adapter/source"
	"github.com/mmcdole/cinescope/internal/catalog"
	"github.com/mmcdole/cinescope/internal/domain"
	"github.com/mmcdole/cinescope/internal/store"
	"github.com/mmcdole/cinescope/internal/tui"
	"github.com/mmcdole/cinescope/internal/tui/styles"
	"github.com/mmcdole/cinescope/internal/watchlist"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                        \r"

func main() {
	var (
		showVersion bool
		listOnly    bool
		clearCache  bool
		configDir   string
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&listOnly, "list", false, "print the watchlist and exit")
	flag.BoolVar(&clearCache, "clear-cache", false, "discard cached catalog responses")
	flag.StringVar(&configDir, "config", "", "config directory (default ~/.config/cinescope)")
	flag.Parse()

	if showVersion {
		fmt.Printf("cinescope %s\n", Version)
		return
	}

	// Piped output gets the plain listing
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		listOnly = true
	}

	if err := run(configDir, listOnly, clearCache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string, listOnly, clearCache bool) error {
	// Load configuration
	cfg, err := adapter.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, logCloser, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, logCloser = adapter.NullLogger(), io.NopCloser(nil)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting cinescope", "version", Version)

	// Durable storage
	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer st.Close()
	if st.Path() == "" {
		logger.Warn("no data directory configured, watchlist will not persist")
	}
	if clearCache {
		if err := st.InvalidateCache(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		logger.Info("cleared catalog cache")
	}

	wl := watchlist.Load(st, logger)
	defer func() {
		if err := wl.Close(); err != nil {
			logger.Error("failed to close watchlist", "error", err)
		}
	}()

	if listOnly {
		return printWatchlist(os.Stdout, wl)
	}

	// Check if configured
	if !cfg.IsConfigured() {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("no TMDB API key configured: set TMDB_API_KEY or run cinescope in a terminal")
		}
		if err := runSetupFlow(cfg, configDir, logger); err != nil {
			return err
		}
	}

	// Create catalog client and services
	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}
	period := domain.ParseTrendingPeriod(cfg.Catalog.TrendingPeriod)
	catalogSvc := catalog.NewService(client, st, period, cfg.Catalog.CacheTTL, logger)

	// Create launcher (uses configured player or the system handler)
	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)

	// Watchlist changes reach the TUI through a channel
	changes := make(chan domain.WatchlistChange, 16)
	wl.Subscribe(tui.NewChannelObserver(changes))

	// Create TUI model
	model := tui.NewModel(tui.Services{
		Catalog:   catalogSvc,
		Watchlist: wl,
		Prefs:     st,
		Launcher:  launcher,
		Changes:   changes,
		Logger:    logger,
	}, tui.LoadTheme(st, cfg.UI.Theme))

	// Run the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	wl.Flush()
	if err := wl.LastPersistError(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: watchlist may not have been saved: %v\n", err)
	}
	return nil
}

// printWatchlist writes one tab-separated line per saved movie
func printWatchlist(w io.Writer, wl *watchlist.Store) error {
	movies := wl.List()
	if len(movies) == 0 {
		_, err := fmt.Fprintln(w, "Your watchlist is empty")
		return err
	}
	for _, m := range movies {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", m.ID, m.Title(), m.FormattedYear()); err != nil {
			return err
		}
	}
	return nil
}

// runSetupFlow prompts for a TMDB API key, checks it and saves the config
func runSetupFlow(cfg *adapter.Config, configDir string, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to CineScope!")
	fmt.Println()
	fmt.Println("CineScope needs a TMDB API key (https://www.themoviedb.org/settings/api).")
	fmt.Println()

	for {
		fmt.Print("Enter your TMDB API key: ")
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		apiKey := strings.TrimSpace(string(keyBytes))
		if apiKey == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}
		cfg.TMDB.APIKey = apiKey

		err = verifyKeyWithSpinner(cfg, logger)
		switch {
		case err == nil:
			fmt.Println("✓ API key verified")
		case errors.Is(err, domain.ErrAuthFailed):
			fmt.Println("✗ TMDB rejected this key. Please try again.")
			fmt.Println()
			continue
		default:
			fmt.Printf("! Could not verify the key (%v); saving it anyway.\n", err)
		}
		break
	}

	if err := adapter.SaveConfig(cfg, configDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}

// verifyKeyWithSpinner makes one catalog request with the configured key
func verifyKeyWithSpinner(cfg *adapter.Config, logger *slog.Logger) error {
	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)

	// Start verification in background
	go func() {
		_, err := client.Trending(ctx, domain.TrendingDay)
		resultCh <- err
	}()

	// Spinner animation
	frame := 0
	fmt.Printf("\r%s Checking key...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking key...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("verification timed out")
		}
	}
}
