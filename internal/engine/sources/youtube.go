package sources

// YouTube implementation is split across two files by responsibility:
//   youtube_innertube.go  — Innertube API types, constants, and low-level HTTP primitives
//   youtube_transcript.go — timed caption fetching (ANDROID player + watch-page fallback)
