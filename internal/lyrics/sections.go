package lyrics

import "strings"

// nonLyricVocabulary marks arrangement sections that occupy a sequence slot
// without carrying text
var nonLyricVocabulary = []string{
	"intro",
	"turnaround",
	"turn around",
	"instrumental",
	"interlude",
	"outro",
	"tag",
	"ending",
}

// romanNumerals maps the ordinals arrangements actually use; anything past
// XX passes through untouched
var romanNumerals = map[string]string{
	"i": "1", "ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9", "x": "10",
	"xi": "11", "xii": "12", "xiii": "13", "xiv": "14", "xv": "15",
	"xvi": "16", "xvii": "17", "xviii": "18", "xix": "19", "xx": "20",
}

// IsNonLyric reports whether a section name or sequence label names a
// structural (no-text) section. Such sections keep their sequence slot but
// render zero slides.
func IsNonLyric(nameOrLabel string) bool {
	lowered := strings.ToLower(strings.TrimSpace(nameOrLabel))
	if lowered == "" {
		return false
	}
	for _, kw := range nonLyricVocabulary {
		if strings.Contains(kw, " ") {
			if strings.Contains(lowered, kw) {
				return true
			}
			continue
		}
		for _, tok := range strings.Fields(lowered) {
			if tok == kw {
				return true
			}
		}
	}
	return false
}

// OrdinalNumber normalizes a sequence ordinal: digits pass through, Roman
// numerals I through XX map to digits, anything else passes through
func OrdinalNumber(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if isDigits(t) {
		return t
	}
	if v, ok := romanNumerals[strings.ToLower(t)]; ok {
		return v
	}
	return t
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
