package tmdb

import "encoding/json"

// pagedResponse is the envelope of list endpoints (trending, search)
type pagedResponse struct {
	Page         int               `json:"page"`
	Results      []json.RawMessage `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

// videosResponse is returned by /movie/{id}/videos
type videosResponse struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}

// Video is one video attached to a movie
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"` // "YouTube", "Vimeo"
	Type string `json:"type"` // "Trailer", "Teaser", "Clip", ...
}

// creditsResponse is returned by /movie/{id}/credits
type creditsResponse struct {
	ID   int64        `json:"id"`
	Cast []castMember `json:"cast"`
}

type castMember struct {
	CastID      int    `json:"cast_id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// errorResponse is the body TMDB sends with non-2xx statuses
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
