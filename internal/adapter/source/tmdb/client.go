package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/cinescope/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	defaultTimeout    = 15 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 250 * time.Millisecond
	userAgent         = "CineScope/1.0"

	// MaxCast is how many top-billed cast members Details returns
	MaxCast = 8
)

// StatusError is a non-2xx response that has no dedicated sentinel
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Client implements domain.CatalogRepository for the TMDB v3 API
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client
	attempts     uint
	retryDelay   time.Duration
	logger       *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetries sets the total attempts for transient failures and the base backoff delay
func WithRetries(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// WithImageBaseURL overrides the image CDN root
func WithImageBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.imageBaseURL = strings.TrimRight(u, "/")
		}
	}
}

// NewClient creates a new TMDB API client
func NewClient(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: DefaultImageBaseURL,
		apiKey:       apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs a GET with retries on transient failures
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return retry.DoWithData(
		func() ([]byte, error) {
			return c.doOnce(ctx, path, query)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("tmdb request failed, retrying", "path", path, "attempt", n+1, "error", err)
		}),
	)
}

func (c *Client) doOnce(ctx context.Context, path string, query url.Values) ([]byte, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	// Path only: the query carries the API key
	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrMovieNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		c.logger.Error("tmdb request error", "path", path, "status", resp.StatusCode, "message", apiErr.StatusMessage)
		return nil, &StatusError{Code: resp.StatusCode, Message: apiErr.StatusMessage}
	}

	return body, nil
}

// isTransient reports whether a failed request is worth repeating
func isTransient(err error) bool {
	if errors.Is(err, domain.ErrCatalogOffline) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return false
}

func (c *Client) getMovies(ctx context.Context, path string, query url.Values) ([]domain.Movie, error) {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var page pagedResponse
	if err := json.Unmarshal(body, &page); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return MapMovies(page.Results, c.logger), nil
}

// Trending returns the movies trending over period
func (c *Client) Trending(ctx context.Context, period domain.TrendingPeriod) ([]domain.Movie, error) {
	period = domain.ParseTrendingPeriod(string(period))
	movies, err := c.getMovies(ctx, "/trending/movie/"+string(period), nil)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetched trending", "period", period, "count", len(movies))
	return movies, nil
}

// Search returns one page of movies matching query. Pages start at 1.
func (c *Client) Search(ctx context.Context, query string, page int) ([]domain.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	movies, err := c.getMovies(ctx, "/search/movie", params)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("search complete", "query", query, "page", page, "count", len(movies))
	return movies, nil
}

// Details fetches the movie, its videos and its credits in parallel.
// Any failed request fails the whole call.
func (c *Client) Details(ctx context.Context, id int64) (*domain.MovieDetail, error) {
	base := "/movie/" + strconv.FormatInt(id, 10)

	var (
		movie   domain.Movie
		videos  videosResponse
		credits creditsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		params := url.Values{}
		params.Set("language", "en-US")
		return c.getJSON(gctx, base, params, &movie)
	})
	g.Go(func() error {
		return c.getJSON(gctx, base+"/videos", nil, &videos)
	})
	g.Go(func() error {
		return c.getJSON(gctx, base+"/credits", nil, &credits)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	trailer := PickTrailer(videos.Results)
	return &domain.MovieDetail{
		Movie:      movie,
		TrailerKey: trailer,
		TrailerURL: TrailerURL(trailer),
		PosterURL:  c.PosterURL(movie.PosterPath(), "w500"),
		Cast:       MapCast(credits.Cast, MaxCast),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "path", path, "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// PosterURL returns the image URL for a poster or profile path at the
// given size ("w185", "w500", "original"), or "" when path is empty.
func (c *Client) PosterURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	return c.imageBaseURL + "/" + size + path
}

// TrailerURL returns the watch URL for a YouTube video key, or "" when key is empty
func TrailerURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(key)
}
