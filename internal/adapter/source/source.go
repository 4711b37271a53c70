package source

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/cinescope/internal/adapter"
	"github.com/mmcdole/cinescope/internal/adapter/source/tmdb"
	"github.com/mmcdole/cinescope/internal/domain"
)

// Catalog is the remote movie catalog plus the image and trailer URL
// helpers the views need.
type Catalog interface {
	domain.CatalogRepository // Trending, Search, Details
	PosterURL(path, size string) string
}

// NewClient creates a Catalog from the TMDB section of the config.
func NewClient(cfg *adapter.TMDBConfig, logger *slog.Logger) (Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("catalog config is nil")
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("TMDB API key is required")
	}

	opts := []tmdb.Option{
		tmdb.WithTimeout(cfg.Timeout),
		tmdb.WithImageBaseURL(cfg.ImageBaseURL),
	}
	if cfg.Retries > 0 {
		opts = append(opts, tmdb.WithRetries(cfg.Retries, 0))
	}

	return tmdb.NewClient(cfg.BaseURL, apiKey, logger, opts...), nil
}

// NewClientFromConfig creates a Catalog from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (Catalog, error) {
	return NewClient(&cfg.TMDB, logger)
}
