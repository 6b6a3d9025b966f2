package errors

import (
	"strings"
	"unicode"
)

// maxEntityIDLength bounds entity identifiers accepted from callers.
const maxEntityIDLength = 512

// ValidateEntityID validates an entity identifier before it is used in a
// cache key or a backend URL.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only IDs
//   - No control characters or null bytes
//   - Maximum length of 512 characters
//
// Backend-specific ID formats (qualified names, UUIDs) are not checked here.
func ValidateEntityID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidEntity, "entity id cannot be empty")
	}

	if len(id) > maxEntityIDLength {
		return New(ErrCodeInvalidEntity, "entity id too long (max %d characters)", maxEntityIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidEntity, "entity id contains invalid control characters")
		}
	}

	return nil
}

// ValidateEntityIDs validates every ID in ids and rejects an empty list.
func ValidateEntityIDs(ids []string) error {
	if len(ids) == 0 {
		return New(ErrCodeInvalidEntity, "at least one entity id is required")
	}
	for _, id := range ids {
		if err := ValidateEntityID(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
