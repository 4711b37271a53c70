// Package search filters the watchlist by title.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/cinescope/internal/domain"
)

// FilterResult is a watchlist movie with match metadata for highlighting
type FilterResult struct {
	Movie          domain.Movie
	MatchedIndexes []int // byte offsets in the title that matched
	Score          int   // higher is better
}

// titleIndex implements fuzzy.Source over lowercase titles
type titleIndex struct {
	movies      []domain.Movie
	lowerTitles []string
}

func (idx titleIndex) String(i int) string { return idx.lowerTitles[i] }
func (idx titleIndex) Len() int            { return len(idx.movies) }

// Filter returns the movies whose titles fuzzy-match query, best first.
// An empty query returns every movie in its original order.
func Filter(query string, movies []domain.Movie) []FilterResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]FilterResult, len(movies))
		for i, m := range movies {
			results[i] = FilterResult{Movie: m}
		}
		return results
	}

	idx := titleIndex{
		movies:      movies,
		lowerTitles: make([]string, len(movies)),
	}
	for i, m := range movies {
		idx.lowerTitles[i] = strings.ToLower(m.Title())
	}

	matches := fuzzy.FindFrom(query, idx)

	results := make([]FilterResult, len(matches))
	for i, match := range matches {
		results[i] = FilterResult{
			Movie:          movies[match.Index],
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		}
	}
	return results
}

// Movies strips the match metadata from results.
func Movies(results []FilterResult) []domain.Movie {
	out := make([]domain.Movie, len(results))
	for i, r := range results {
		out[i] = r.Movie
	}
	return out
}
