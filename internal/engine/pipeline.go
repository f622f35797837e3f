package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// retryState is the per-call retrieval state: the attempt budget, the
// rotation cooldown, and the marker set used to classify failures. It
// never outlives one FetchTranscript call.
type retryState struct {
	maxAttempts int
	cooldown    time.Duration
	markers     []string
}

// FetchTranscript retrieves the transcript for videoID and assembles the
// final result document. It never returns an error to the caller: every
// failure, including an exhausted retry budget, lands in Result.Error.
func FetchTranscript(ctx context.Context, videoID string, includeGroups bool) Result {
	IncrTranscriptRequests()

	if cfg.Provider == nil {
		return BuildResult(videoID, nil, errors.New("no transcript provider configured"), includeGroups)
	}

	rs := retryState{
		maxAttempts: cfg.MaxAttempts,
		cooldown:    cfg.RotationCooldown,
		markers:     cfg.RateLimitMarkers,
	}
	if rs.maxAttempts < 1 {
		rs.maxAttempts = 1
	}
	if len(rs.markers) == 0 {
		rs.markers = DefaultRateLimitMarkers
	}

	tr, err := fetchWithRotation(ctx, videoID, cfg.Provider, cfg.Rotator, rs)
	if err != nil {
		IncrFetchErrors()
	}
	return BuildResult(videoID, tr, err, includeGroups)
}

// fetchWithRotation drives the upstream provider through the retry budget.
// Rate-limit-signatured failures trigger one identity rotation plus a fixed
// cooldown and another attempt; any other failure is terminal immediately.
func fetchWithRotation(ctx context.Context, videoID string, p TranscriptProvider, r IdentityRotator, rs retryState) (*Transcript, error) {
	for attempt := 1; ; attempt++ {
		if cfg.Limiter != nil {
			if err := cfg.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		tr, err := p.Fetch(ctx, videoID)
		if err == nil {
			return tr, nil
		}

		if !matchesRateLimit(err.Error(), rs.markers) {
			// Fail closed: unrecognized failures are not worth another attempt.
			return nil, err
		}
		IncrRateLimitHits()
		if attempt >= rs.maxAttempts {
			return nil, err
		}

		slog.Warn("rate limited, rotating identity",
			slog.String("id", videoID),
			slog.Int("attempt", attempt+1),
			slog.Int("max", rs.maxAttempts))
		rotateIdentity(ctx, r)

		select {
		case <-time.After(rs.cooldown):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// rotateIdentity requests a new egress identity. Rotation failure does not
// abort the retry — the next attempt proceeds with whatever identity the
// anonymizing layer has — but it is logged and counted so a dead control
// channel stays visible.
func rotateIdentity(ctx context.Context, r IdentityRotator) {
	if r == nil {
		return
	}
	IncrIdentityRotations()
	if err := r.Rotate(ctx); err != nil {
		slog.Warn("identity rotation failed", slog.Any("error", err))
	}
}
