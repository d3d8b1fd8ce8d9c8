package lyrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentSingleSlide(t *testing.T) {
	lines, slides := Segment("Line one\nLine two")

	assert.Equal(t, []string{"Line one", "Line two"}, lines)
	require.Len(t, slides, 1)
	assert.Equal(t, []string{"Line one", "Line two"}, slides[0])
}

func TestSegmentBlankLineFlushes(t *testing.T) {
	lines, slides := Segment("Line one\n\nLine two\nLine three")

	assert.Equal(t, []string{"Line one", "Line two", "Line three"}, lines)
	require.Len(t, slides, 2)
	assert.Equal(t, []string{"Line one"}, slides[0])
	assert.Equal(t, []string{"Line two", "Line three"}, slides[1])
}

func TestSegmentPacksPairs(t *testing.T) {
	_, slides := Segment("One\nTwo\nThree\nFour\nFive")

	require.Len(t, slides, 3)
	assert.Equal(t, []string{"One", "Two"}, slides[0])
	assert.Equal(t, []string{"Three", "Four"}, slides[1])
	assert.Equal(t, []string{"Five"}, slides[2])
}

func TestSegmentStripsPunctuation(t *testing.T) {
	lines, _ := Segment("Don't stop, believin'!\n(Whoa) — sing it")

	assert.Equal(t, []string{"Dont stop believin", "Whoa sing it"}, lines)
}

func TestSegmentWrapsLongLines(t *testing.T) {
	long := "And I will rise when He calls my name no more sorrow no more pain"
	lines, slides := Segment(long)

	require.Len(t, lines, 2)
	assert.Equal(t, "And I will rise when He calls my name no more", lines[0])
	assert.Equal(t, "sorrow no more pain", lines[1])
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), maxLineLength)
	}
	require.Len(t, slides, 1)
	assert.Equal(t, lines, slides[0])
}

func TestSegmentNormalizesWhitespace(t *testing.T) {
	lines, _ := Segment("First line\r\nSecond  line\r")

	assert.Equal(t, []string{"First line", "Second line"}, lines)
}

func TestSegmentTrimsBoundaryBlanks(t *testing.T) {
	_, slides := Segment("\n\n  \nOnly line\n\n\n")

	require.Len(t, slides, 1)
	assert.Equal(t, []string{"Only line"}, slides[0])
}

func TestSegmentEmpty(t *testing.T) {
	lines, slides := Segment("   \n \n")
	assert.Nil(t, lines)
	assert.Nil(t, slides)
}

func TestSegmentRoundTrip(t *testing.T) {
	blocks := []string{
		"Line one\nLine two",
		"One\nTwo\n\nThree\nFour\nFive\nSix\nSeven",
		"A very long opening line that certainly exceeds the forty-eight character wrap limit by a wide margin\nshort",
		"Comma, comma,\n\n\ndashes --- and dots...",
	}

	for _, block := range blocks {
		lines, slides := Segment(block)

		var flattened []string
		for _, slide := range slides {
			require.GreaterOrEqual(t, len(slide), 1, "no slide may be empty")
			require.LessOrEqual(t, len(slide), maxSlideLines)
			for _, l := range slide {
				require.NotEmpty(t, strings.TrimSpace(l))
			}
			flattened = append(flattened, slide...)
		}
		assert.Equal(t, lines, flattened, "slides must reproduce the line stream exactly once")
	}
}

func TestIsNonLyric(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Intro", true},
		{"INSTRUMENTAL", true},
		{"Turn Around", true},
		{"Turnaround 2", true},
		{"Tag", true},
		{"Tag 1", true},
		{"Outro", true},
		{"Verse 1", false},
		{"Chorus", false},
		{"Montage", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNonLyric(tt.name), "IsNonLyric(%q)", tt.name)
	}
}

func TestOrdinalNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2", "2"},
		{"IV", "4"},
		{"xx", "20"},
		{"XVIII", "18"},
		{"B", "B"},
		{" 3 ", "3"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OrdinalNumber(tt.in), "OrdinalNumber(%q)", tt.in)
	}
}
