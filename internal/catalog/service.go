// Package catalog orchestrates the remote movie catalog and the local
// response cache.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/cinescope/internal/domain"
)

// PrefixTrending is the cache key prefix for trending lists (trending:{period})
const PrefixTrending = "trending:"

// DefaultCacheTTL is how long a cached trending list is served without refetching
const DefaultCacheTTL = time.Hour

// Service wraps a catalog client with trending caching and local search ranking.
type Service struct {
	client domain.CatalogRepository
	cache  domain.CacheStore
	period domain.TrendingPeriod
	ttl    time.Duration
	logger *slog.Logger

	now func() time.Time
}

// NewService creates a new catalog service. cache may be nil to disable caching.
func NewService(
	client domain.CatalogRepository,
	cache domain.CacheStore,
	period domain.TrendingPeriod,
	ttl time.Duration,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		client: client,
		cache:  cache,
		period: domain.ParseTrendingPeriod(string(period)),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Period returns the trending window this service fetches.
func (s *Service) Period() domain.TrendingPeriod {
	return s.period
}

// Trending returns the trending list, from cache while it is fresh.
func (s *Service) Trending(ctx context.Context) ([]domain.Movie, error) {
	return s.trending(ctx, false)
}

// RefreshTrending refetches the trending list, ignoring a fresh cache entry.
func (s *Service) RefreshTrending(ctx context.Context) ([]domain.Movie, error) {
	return s.trending(ctx, true)
}

func (s *Service) trending(ctx context.Context, force bool) ([]domain.Movie, error) {
	key := PrefixTrending + string(s.period)

	// 1. Freshness check
	var cached []domain.Movie
	fetchedAt, hasCached := s.getCached(key, &cached)
	if hasCached && !force && s.isFresh(fetchedAt) {
		s.logger.Debug("cache fresh", "key", key, "count", len(cached))
		return cached, nil
	}

	// 2. Fetch
	s.logger.Debug("cache stale, fetching", "key", key, "force", force)
	movies, err := s.client.Trending(ctx, s.period)
	if err != nil {
		if hasCached && ctx.Err() == nil {
			s.logger.Warn("trending fetch failed, serving stale cache",
				"error", err, "key", key, "age", s.now().Sub(time.Unix(fetchedAt, 0)))
			return cached, nil
		}
		s.logger.Error("failed to fetch trending", "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SaveCached(key, movies); err != nil {
			s.logger.Error("failed to save trending", "error", err, "key", key)
		}
	}
	s.logger.Debug("fetched trending", "count", len(movies))
	return movies, nil
}

func (s *Service) getCached(key string, dest *[]domain.Movie) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	return s.cache.GetCached(key, dest)
}

func (s *Service) isFresh(fetchedAt int64) bool {
	return s.now().Sub(time.Unix(fetchedAt, 0)) < s.ttl
}

// Search queries the catalog and re-ranks the page by title closeness.
func (s *Service) Search(ctx context.Context, query string, page int) ([]domain.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	s.logger.Debug("searching", "query", query, "page", page)

	results, err := s.client.Search(ctx, query, page)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", query)
		return nil, err
	}

	ranked := RankResults(results, query)
	s.logger.Debug("search complete", "query", query, "results", len(ranked))
	return ranked, nil
}

// Details returns the movie with its trailer and cast. Details are not cached.
func (s *Service) Details(ctx context.Context, id int64) (*domain.MovieDetail, error) {
	detail, err := s.client.Details(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch details", "error", err, "movieID", id)
		return nil, err
	}
	s.logger.Debug("fetched details", "movieID", id, "cast", len(detail.Cast))
	return detail, nil
}

// RankResults orders movies by how closely their titles match query.
// Equal scores keep the catalog's order.
func RankResults(movies []domain.Movie, query string) []domain.Movie {
	if len(movies) == 0 {
		return movies
	}

	query = strings.ToLower(strings.TrimSpace(query))

	type rankedMovie struct {
		movie domain.Movie
		score int
	}

	ranked := make([]rankedMovie, len(movies))
	for i, m := range movies {
		ranked[i] = rankedMovie{movie: m, score: matchScore(strings.ToLower(m.Title()), query)}
	}

	// Sort by score (lower is better)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	results := make([]domain.Movie, len(ranked))
	for i, r := range ranked {
		results[i] = r.movie
	}
	return results
}

// matchScore ranks a lowercase title against a lowercase query.
// Lower score = better match
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	}
	return 100 + fuzzy.LevenshteinDistance(query, title)
}
