package engine

import (
	"fmt"
	"regexp"
)

// canonicalIDRe matches a bare 11-character YouTube video ID.
var canonicalIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// videoIDPatterns extract an ID from the known URL shapes, tried in order:
// watch/query-parameter and short-link forms, then embed, then shorts.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/v/|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:shorts/)([a-zA-Z0-9_-]{11})`),
}

// InvalidReferenceError reports a reference that matches no known video
// ID or URL shape. It keeps the original input for diagnostics.
type InvalidReferenceError struct {
	Reference string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("could not extract video ID from: %s", e.Reference)
}

// ExtractVideoID normalises a free-form reference (bare ID or YouTube URL)
// into the canonical 11-character video ID. Pure and deterministic.
func ExtractVideoID(ref string) (string, error) {
	if canonicalIDRe.MatchString(ref) {
		return ref, nil
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(ref); len(m) == 2 {
			return m[1], nil
		}
	}
	return "", &InvalidReferenceError{Reference: ref}
}
