package domain

import "errors"

var (
	// ErrSourceUnavailable signals that the document source could not be
	// reached and no previously fetched snapshot exists to fall back to.
	ErrSourceUnavailable = errors.New("document source unavailable")
	// ErrFieldNotFound signals a field that appears on no article.
	ErrFieldNotFound = errors.New("field not found")
	// ErrArticleNotFound signals a failed article detail lookup.
	ErrArticleNotFound = errors.New("article not found")
	// ErrInvalidSince signals a malformed since_date value.
	ErrInvalidSince = errors.New("invalid since_date")
)
