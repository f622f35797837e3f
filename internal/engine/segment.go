package engine

import (
	"fmt"
	"strings"
)

// DefaultPauseThreshold is the minimum silence (seconds) between two
// consecutive caption segments that starts a new group.
const DefaultPauseThreshold = 2.0

// FormatTimestamp renders seconds as H:MM:SS, or M:SS when under an hour.
// Fractions truncate toward zero; hours are not zero-padded.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(seconds/60) % 60
	secs := int(seconds) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// groupAccum is the open-group state while scanning segments: the start
// offset of the group plus the texts collected so far. Reset on each split.
type groupAccum struct {
	start float64
	texts []string
}

func (g *groupAccum) close() Group {
	return Group{
		Start:     g.start,
		Timestamp: FormatTimestamp(g.start),
		Text:      strings.Join(g.texts, " "),
	}
}

// GroupByPauses merges consecutive segments into topic-like groups. A new
// group opens whenever the silence between one segment's end and the next
// segment's start reaches pauseThreshold. Overlapping segments (negative
// gap) never split. Every input segment lands in exactly one group.
func GroupByPauses(segments []Segment, pauseThreshold float64) []Group {
	if len(segments) == 0 {
		return []Group{}
	}

	groups := make([]Group, 0, 4)
	cur := groupAccum{start: segments[0].Start, texts: []string{segments[0].Text}}

	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		gap := segments[i].Start - (prev.Start + prev.Duration)

		if gap >= pauseThreshold {
			groups = append(groups, cur.close())
			cur = groupAccum{start: segments[i].Start, texts: []string{segments[i].Text}}
		} else {
			cur.texts = append(cur.texts, segments[i].Text)
		}
	}

	return append(groups, cur.close())
}

// JoinTexts concatenates segment texts with single spaces, in input order.
func JoinTexts(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}
