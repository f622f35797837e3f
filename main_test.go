package main

import (
	"context"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

type fakeProvider struct{}

func (fakeProvider) Fetch(context.Context, string) (*engine.Transcript, error) {
	return &engine.Transcript{
		Segments: []engine.Segment{{Text: "hi", Start: 0, Duration: 1}},
		Language: "en",
	}, nil
}

func TestRetrieveInvalidReference(t *testing.T) {
	res := retrieve(context.Background(), "definitely not a video", false)
	if res.Error == "" {
		t.Fatal("expected an error document")
	}
	if !strings.Contains(res.Error, "definitely not a video") {
		t.Errorf("error should carry the original input: %q", res.Error)
	}
	if res.VideoID != "" || res.Segments != nil {
		t.Error("resolver failure must not carry payload fields")
	}
}

func TestRetrieveResolvesURL(t *testing.T) {
	engine.Init(engine.Config{Provider: fakeProvider{}, MaxAttempts: 1})

	res := retrieve(context.Background(), "https://youtu.be/dQw4w9WgXcQ", false)
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("videoId = %q", res.VideoID)
	}
	if res.FullText != "hi" {
		t.Errorf("fullText = %q", res.FullText)
	}
}
