package engine

import (
	"errors"
	"testing"
)

func TestMatchesRateLimit(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want bool
	}{
		{"status code", "HTTP 429: quota", true},
		{"status text", "Too Many Requests", true},
		{"blocked phrasing", "YouTube is blocking requests from your IP", true},
		{"library phrasing", "Could not retrieve a transcript for the video", true},
		{"mixed case", "REQUEST WAS BLOCKED", true},
		{"captions disabled", "captions unavailable: disabled by uploader", false},
		{"video gone", "Video unavailable", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesRateLimit(tt.msg, DefaultRateLimitMarkers); got != tt.want {
				t.Errorf("matchesRateLimit(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestIsRateLimitedFailsClosed(t *testing.T) {
	Init(Config{})
	// Unrecognized failures must classify as non-retryable.
	if IsRateLimited(errors.New("some brand new upstream wording")) {
		t.Error("unknown error classified as rate limit")
	}
	if IsRateLimited(nil) {
		t.Error("nil error classified as rate limit")
	}
}

func TestIsRateLimitedCustomMarkers(t *testing.T) {
	Init(Config{RateLimitMarkers: []string{"slow down"}})
	defer Init(Config{})

	if !IsRateLimited(errors.New("please SLOW DOWN")) {
		t.Error("configured marker not matched")
	}
	if IsRateLimited(errors.New("HTTP 429")) {
		t.Error("default markers should not apply when overridden")
	}
}
