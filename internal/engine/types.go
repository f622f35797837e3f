package engine

// Segment is one timed caption line as delivered by the upstream provider.
// Segments arrive in non-decreasing Start order and are never re-sorted here.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Group is a contiguous run of segments merged because the silence between
// them stayed below the pause threshold.
type Group struct {
	Start     float64 `json:"start"`
	Timestamp string  `json:"timestamp"`
	Text      string  `json:"text"`
}

// Result is the single output document for one transcript retrieval.
// Either the payload fields or Error is populated, never both.
type Result struct {
	VideoID         string    `json:"videoId,omitempty"`
	Language        string    `json:"language,omitempty"`
	Segments        []Segment `json:"segments,omitempty"`
	GroupedSegments []Group   `json:"groupedSegments,omitempty"`
	FullText        string    `json:"fullText,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// Transcript is what a provider hands back on success: the raw timed
// segments plus the language code of the caption track they came from.
type Transcript struct {
	Segments []Segment
	Language string
}
