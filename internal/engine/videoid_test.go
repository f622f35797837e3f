package engine

import (
	"errors"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"canonical id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"legacy v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if len(got) != 11 {
				t.Errorf("id %q is not 11 characters", got)
			}
		})
	}
}

func TestExtractVideoIDInvalid(t *testing.T) {
	for _, ref := range []string{
		"not a valid ref",
		"",
		"tooshortid",                 // 10 chars
		"anidthatistoolong",          // >11 chars, no URL shape
		"https://example.com/watch",  // no id
		"dQw4w9WgXc!",                // bad character
	} {
		t.Run(ref, func(t *testing.T) {
			_, err := ExtractVideoID(ref)
			if err == nil {
				t.Fatal("expected error")
			}
			var invalid *InvalidReferenceError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidReferenceError, got %T", err)
			}
			if invalid.Reference != ref {
				t.Errorf("error carries %q, want original input %q", invalid.Reference, ref)
			}
		})
	}
}
