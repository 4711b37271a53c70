package tmdb

import (
	"encoding/json"
	"log/slog"

	"github.com/mmcdole/cinescope/internal/domain"
)

// MapMovies converts raw list results, skipping entries without a usable id
func MapMovies(raw []json.RawMessage, logger *slog.Logger) []domain.Movie {
	movies := make([]domain.Movie, 0, len(raw))
	for _, r := range raw {
		var m domain.Movie
		if err := json.Unmarshal(r, &m); err != nil {
			logger.Debug("skipping catalog result", "error", err)
			continue
		}
		movies = append(movies, m)
	}
	return movies
}

// PickTrailer returns the key of the first YouTube trailer, or "" if none
func PickTrailer(videos []Video) string {
	for _, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v.Key
		}
	}
	return ""
}

// MapCast converts the first limit cast entries, in billing order
func MapCast(cast []castMember, limit int) []domain.CastMember {
	if limit > 0 && len(cast) > limit {
		cast = cast[:limit]
	}
	out := make([]domain.CastMember, len(cast))
	for i, c := range cast {
		out[i] = domain.CastMember{
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
		}
	}
	return out
}
