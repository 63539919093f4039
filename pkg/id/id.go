package id

import (
	"strings"

	"github.com/google/uuid"
)

// TokenID identifies a single issued session token (the jti claim).
type TokenID string

// SearchID identifies one flight search response.
type SearchID string

func NewTokenID() TokenID {
	return TokenID(uuid.NewString())
}

// NewSearchID returns "search_" followed by ten lowercase hex characters.
func NewSearchID() SearchID {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return SearchID("search_" + hex[:10])
}
