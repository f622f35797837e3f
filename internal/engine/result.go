package engine

// BuildResult composes the response document for one retrieval. Exactly one
// shape comes out: the payload fields on success, {videoId, error} on
// failure. GroupedSegments are attached only when asked for.
func BuildResult(videoID string, tr *Transcript, err error, includeGroups bool) Result {
	if err != nil {
		return Result{VideoID: videoID, Error: err.Error()}
	}

	lang := tr.Language
	if lang == "" {
		lang = cfg.DefaultLanguage
	}
	if lang == "" {
		lang = "en"
	}

	res := Result{
		VideoID:  videoID,
		Language: lang,
		Segments: tr.Segments,
		FullText: JoinTexts(tr.Segments),
	}
	if includeGroups {
		threshold := cfg.PauseThreshold
		if threshold <= 0 {
			threshold = DefaultPauseThreshold
		}
		res.GroupedSegments = GroupByPauses(tr.Segments, threshold)
	}
	return res
}
