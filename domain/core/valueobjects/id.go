package valueobjects

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh random identifier for contacts, relationships and
// their phone/email rows.
func NewID() string {
	return uuid.New().String()
}

// CleanID trims surrounding whitespace from an identifier supplied by a caller.
// Identifiers are opaque, so nothing beyond trimming is enforced.
func CleanID(id string) string {
	return strings.TrimSpace(id)
}
