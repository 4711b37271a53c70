package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrMovieNotFound indicates the catalog has no movie with the requested ID
	ErrMovieNotFound = errors.New("movie not found")

	// ErrCatalogOffline indicates the catalog API is unreachable
	ErrCatalogOffline = errors.New("catalog is unreachable")

	// ErrAuthFailed indicates the catalog API key was rejected
	ErrAuthFailed = errors.New("catalog API key is invalid")

	// ErrEmptyQuery indicates a search was requested without a query
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrInvalidMovie indicates a record without a usable integer id
	ErrInvalidMovie = errors.New("movie record has no valid id")
)
