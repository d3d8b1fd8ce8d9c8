package lyrics

import (
	"strings"
	"unicode"

	"github.com/mitchellh/go-wordwrap"
)

const (
	// Longest line the host renders comfortably on one slide row
	maxLineLength = 48
	maxSlideLines = 2
)

// Segment turns a raw lyric block into the cleaned line stream and the
// slide packing the host will render. Blank source lines flush the current
// slide; no slide ever holds zero or more than two lines.
func Segment(raw string) (lines []string, slides [][]string) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	rawLines := strings.Split(text, "\n")
	start, end := 0, len(rawLines)
	for start < end && strings.TrimSpace(rawLines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(rawLines[end-1]) == "" {
		end--
	}

	var current []string
	flush := func() {
		if len(current) > 0 {
			slides = append(slides, current)
			current = nil
		}
	}

	for _, rawLine := range rawLines[start:end] {
		if strings.TrimSpace(rawLine) == "" {
			flush()
			continue
		}
		cleaned := CleanLine(rawLine)
		if cleaned == "" {
			continue
		}
		for _, wrapped := range wrapLine(cleaned) {
			lines = append(lines, wrapped)
			current = append(current, wrapped)
			if len(current) == maxSlideLines {
				flush()
			}
		}
	}
	flush()
	return lines, slides
}

// CleanLine strips punctuation and symbol runes and collapses whitespace
func CleanLine(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// wrapLine splits a cleaned line at spaces so no piece exceeds the slide
// width. A single word longer than the limit stays whole.
func wrapLine(s string) []string {
	if len(s) <= maxLineLength {
		return []string{s}
	}
	return strings.Split(wordwrap.WrapString(s, maxLineLength), "\n")
}
