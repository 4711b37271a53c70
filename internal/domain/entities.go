package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// idField is the only field the watchlist interprets
const idField = "id"

// Movie is a catalog movie record: a required integer ID plus the
// descriptive fields returned by the catalog, passed through unmodified.
type Movie struct {
	ID     int64
	Fields map[string]any // everything except "id"
}

// NewMovie builds a record from an ID and passthrough fields.
// Any "id" key in fields is ignored in favour of id.
func NewMovie(id int64, fields map[string]any) Movie {
	m := Movie{ID: id, Fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		if k == idField {
			continue
		}
		m.Fields[k] = v
	}
	return m
}

// Clone returns a copy whose field map can be modified independently.
func (m Movie) Clone() Movie {
	return NewMovie(m.ID, m.Fields)
}

// MarshalJSON flattens the record back into the catalog's shape.
func (m Movie) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	out[idField] = m.ID
	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON object carrying an integer "id".
// Numbers are kept as json.Number so they are written back exactly as read.
func (m *Movie) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return ErrInvalidMovie
	}

	id, err := parseID(raw[idField])
	if err != nil {
		return err
	}

	delete(raw, idField)
	m.ID = id
	m.Fields = raw
	return nil
}

func parseID(v any) (int64, error) {
	switch id := v.(type) {
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMovie, id.String())
		}
		return n, nil
	case float64:
		if id != math.Trunc(id) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidMovie, id)
		}
		return int64(id), nil
	case int64:
		return id, nil
	case int:
		return int64(id), nil
	default:
		return 0, ErrInvalidMovie
	}
}

// StringField returns a passthrough string field, or "" if absent.
func (m Movie) StringField(key string) string {
	if s, ok := m.Fields[key].(string); ok {
		return s
	}
	return ""
}

// Float returns a passthrough numeric field, or 0 if absent.
func (m Movie) Float(key string) float64 {
	switch v := m.Fields[key].(type) {
	case json.Number:
		f, _ := v.Float64()
		return f
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func (m Movie) Title() string       { return m.StringField("title") }
func (m Movie) Overview() string    { return m.StringField("overview") }
func (m Movie) PosterPath() string  { return m.StringField("poster_path") }
func (m Movie) ReleaseDate() string { return m.StringField("release_date") }
func (m Movie) Rating() float64     { return m.Float("vote_average") }
func (m Movie) Runtime() int        { return int(m.Float("runtime")) }

// Year returns the release year, or 0 when the release date is unknown.
func (m Movie) Year() int {
	t, err := time.Parse("2006-01-02", m.ReleaseDate())
	if err != nil {
		return 0
	}
	return t.Year()
}

// FormattedRating returns the rating with one decimal, or "N/A" when unrated
func (m Movie) FormattedRating() string {
	r := m.Rating()
	if r == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// FormattedYear returns the release year, or "TBD" when unknown
func (m Movie) FormattedYear() string {
	if y := m.Year(); y > 0 {
		return strconv.Itoa(y)
	}
	return "TBD"
}

// Genres returns genre names from the detail payload ([{id, name}, ...]).
func (m Movie) Genres() []string {
	list, ok := m.Fields["genres"].([]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(list))
	for _, g := range list {
		obj, ok := g.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := obj["name"].(string); ok && strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	return names
}

// CastMember is one credited actor
type CastMember struct {
	Name        string
	Character   string
	ProfilePath string
}

// MovieDetail is everything the detail view shows for one title
type MovieDetail struct {
	Movie      Movie
	TrailerKey string // YouTube video key, empty when no trailer exists
	TrailerURL string
	PosterURL  string
	Cast       []CastMember
}

// TrendingPeriod is the window for trending lists
type TrendingPeriod string

const (
	TrendingDay  TrendingPeriod = "day"
	TrendingWeek TrendingPeriod = "week"
)

// ParseTrendingPeriod normalizes a configured period, defaulting to week.
func ParseTrendingPeriod(s string) TrendingPeriod {
	switch TrendingPeriod(strings.ToLower(strings.TrimSpace(s))) {
	case TrendingDay:
		return TrendingDay
	default:
		return TrendingWeek
	}
}
