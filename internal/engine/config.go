package engine

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// TranscriptProvider is the upstream caption source. It returns the raw
// timed segments for a video or a provider-specific error; the retry loop
// keys its decisions solely on that error's message.
type TranscriptProvider interface {
	Fetch(ctx context.Context, videoID string) (*Transcript, error)
}

// IdentityRotator asks the anonymizing layer for a fresh egress identity.
// Rotation is best-effort: a failed rotation is logged, not fatal.
type IdentityRotator interface {
	Rotate(ctx context.Context) error
}

// Config holds all engine configuration, injected from main.
type Config struct {
	Languages        []string      // caption language preference order
	DefaultLanguage  string        // reported when the track has no language code
	MaxAttempts      int           // upstream retry budget per retrieval
	RotationCooldown time.Duration // settle time after an identity rotation
	PauseThreshold   float64       // silence gap (seconds) that splits groups
	FetchTimeout     time.Duration
	RateLimitMarkers []string // empty = DefaultRateLimitMarkers

	HTTPClient    *http.Client
	BrowserClient *BrowserClient     // nil = watch-page scrape disabled
	Provider      TranscriptProvider // upstream caption source
	Rotator       IdentityRotator    // nil = rotation disabled
	Cookies       CookieProvider     // nil = no cookies sent
	Limiter       *rate.Limiter      // nil = unpaced upstream calls
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
