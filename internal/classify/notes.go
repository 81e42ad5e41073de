package classify

import (
	"strings"

	"marquee/internal/film"
)

// buildNotes cleans notes that came in with the record or synthesizes them
// from the classification results.
func (e *Engine) buildNotes(record *film.Record) string {
	if record.Notes != "" {
		return CleanNotes(record.Notes)
	}

	var parts []string
	if record.ShortProgram {
		parts = append(parts, "Shorts program")
	}
	if record.Restoration {
		parts = append(parts, "Restoration/revival")
	}
	if record.IntroOrQnA {
		parts = append(parts, "Includes intro/Q&A")
	}
	if !record.LikelyDistributed {
		parts = append(parts, "Limited distribution expected")
	}
	return strings.Join(parts, "; ")
}

// emojiRanges covers emoticons, pictographs, transport symbols, flags, and
// the dingbat/enclosed blocks commonly pasted into festival copy.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F1E0, 0x1F1FF},
	{0x2702, 0x27B0},
	{0x24C2, 0x1F251},
}

// CleanNotes strips emoji code points and collapses runs of whitespace.
func CleanNotes(notes string) string {
	if notes == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(notes))
	for _, r := range notes {
		if isEmoji(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isEmoji(r rune) bool {
	for _, span := range emojiRanges {
		if r >= span[0] && r <= span[1] {
			return true
		}
	}
	return false
}
