package sources

import (
	"encoding/json"
	"testing"
)

func TestParseTimedText(t *testing.T) {
	xmlBody := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.24" dur="3.12">hello there</text>
  <text start="3.5" dur="2">it&amp;#39;s a &lt;i&gt;styled&lt;/i&gt; line</text>
  <text start="6" dur="1">   </text>
  <text start="7.75" dur="1.5">goodbye</text>
</transcript>`)

	segments, err := parseTimedText(xmlBody)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments (blank line dropped), got %d", len(segments))
	}
	if segments[0].Text != "hello there" || segments[0].Start != 0.24 || segments[0].Duration != 3.12 {
		t.Errorf("segment 0 = %+v", segments[0])
	}
	if segments[1].Text != "it's a styled line" {
		t.Errorf("segment 1 text = %q", segments[1].Text)
	}
	if segments[2].Start != 7.75 {
		t.Errorf("segment 2 start = %v", segments[2].Start)
	}
}

func TestParseTimedTextEmpty(t *testing.T) {
	if _, err := parseTimedText([]byte(`<transcript></transcript>`)); err == nil {
		t.Error("expected error for empty transcript")
	}
	if _, err := parseTimedText([]byte(`not xml at all`)); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestPickBestTrack(t *testing.T) {
	manual := captionTrack{BaseURL: "https://yt/tt?lang=en", LanguageCode: "en"}
	asr := captionTrack{BaseURL: "https://yt/tt?lang=en&kind=asr", LanguageCode: "en", Kind: "asr"}
	german := captionTrack{BaseURL: "https://yt/tt?lang=de", LanguageCode: "de"}
	gated := captionTrack{BaseURL: "https://yt/tt?lang=en&exp=xpe", LanguageCode: "en"}

	tests := []struct {
		name    string
		tracks  []captionTrack
		langs   []string
		want    string
		usable  bool
	}{
		{"manual beats asr", []captionTrack{asr, manual}, []string{"en"}, manual.BaseURL, true},
		{"asr when only option", []captionTrack{asr}, []string{"en"}, asr.BaseURL, true},
		{"preferred language wins", []captionTrack{manual, german}, []string{"de"}, german.BaseURL, true},
		{"english fallback", []captionTrack{german, manual}, []string{"fr"}, manual.BaseURL, true},
		{"first usable fallback", []captionTrack{german}, []string{"fr"}, german.BaseURL, true},
		{"potoken tracks skipped", []captionTrack{gated, german}, []string{"en"}, german.BaseURL, true},
		{"all potoken", []captionTrack{gated}, []string{"en"}, gated.BaseURL, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tt.tracks, tt.langs)
			if ok != tt.usable {
				t.Fatalf("usable = %v, want %v", ok, tt.usable)
			}
			if got.BaseURL != tt.want {
				t.Errorf("picked %q, want %q", got.BaseURL, tt.want)
			}
		})
	}
}

func TestNeedsPoToken(t *testing.T) {
	if !needsPoToken("https://yt/tt?a=1&exp=xpe&b=2") {
		t.Error("exp=xpe track should need PoToken")
	}
	if needsPoToken("https://yt/tt?a=1") {
		t.Error("plain track should not need PoToken")
	}
}

func TestSelectTrack(t *testing.T) {
	var resp innertubePlayerResp
	err := json.Unmarshal([]byte(`{
		"captions": {
			"playerCaptionsTracklistRenderer": {
				"captionTracks": [
					{"baseUrl": "https://yt/tt?lang=en", "languageCode": "en", "kind": "asr"}
				]
			}
		}
	}`), &resp)
	if err != nil {
		t.Fatal(err)
	}

	track, err := selectTrack(resp, []string{"en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.LanguageCode != "en" {
		t.Errorf("language = %q", track.LanguageCode)
	}
}

func TestSelectTrackNoCaptions(t *testing.T) {
	var resp innertubePlayerResp
	if err := json.Unmarshal([]byte(`{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`), &resp); err != nil {
		t.Fatal(err)
	}

	_, err := selectTrack(resp, []string{"en"})
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "captions unavailable: Video unavailable"; err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1} trailing`, `{"a":1}`},
		{"nested", `{"a":{"b":[1,2]},"c":"x"};var y`, `{"a":{"b":[1,2]},"c":"x"}`},
		{"braces in strings", `{"a":"}{"} rest`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"say \"hi\""}`, `{"a":"say \"hi\""}`},
		{"unterminated", `{"a":1`, ""},
		{"not an object", `[1,2,3]`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON([]byte(tt.in))
			if string(got) != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
