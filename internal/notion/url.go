package notion

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// hexIDPattern matches a 32-character hex id anywhere in a string.
var hexIDPattern = regexp.MustCompile(`[0-9a-fA-F]{32}`)

// ParseURL extracts a page or database id from user input and returns it
// in dashed UUID form (8-4-4-4-12).
//
// Accepted input:
//   - https://www.notion.so/{workspace}/{title}-{id}
//   - https://www.notion.so/{id}?v={view_id}
//   - a raw 32-char hex id
//   - a dashed UUID
func ParseURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty page or database reference")
	}

	if id, ok := canonicalID(input); ok {
		return id, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	// The id is the last path segment that carries one; query parameters
	// such as ?v= hold view ids and are ignored.
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if id, ok := canonicalID(segments[i]); ok {
			return id, nil
		}
		if match := hexIDPattern.FindString(segments[i]); match != "" {
			if id, ok := canonicalID(match); ok {
				return id, nil
			}
		}
	}

	return "", fmt.Errorf("no Notion id found in %q", input)
}

// canonicalID reports whether s is exactly one id, with or without dashes.
func canonicalID(s string) (string, bool) {
	if len(s) != 32 && len(s) != 36 {
		return "", false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
