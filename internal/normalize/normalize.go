package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Parenthesized and bracketed fragments carry presentation hints
	// ("(Song)", "[Reprise]"), never identity
	parenPattern   = regexp.MustCompile(`\([^)]*\)`)
	bracketPattern = regexp.MustCompile(`\[[^\]]*\]`)
	nonAlnum       = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// suffixAliases collapses known title suffixes to their canonical form.
// Values must themselves be normalized fixed points so Title stays
// idempotent.
var suffixAliases = []struct {
	suffix string
	alias  string
}{
	{"worship song", "worship"},
	{"praise song", "praise"},
}

// Title canonicalizes a plan or asset title for identity comparison.
// Two titles name the same logical entity iff their normalized forms are
// equal; callers never compare raw strings.
func Title(s string) string {
	if s == "" {
		return ""
	}

	result := parenPattern.ReplaceAllString(s, " ")
	result = bracketPattern.ReplaceAllString(result, " ")
	result = strings.ToLower(result)
	result = foldAccents(result)
	result = nonAlnum.ReplaceAllString(result, " ")
	result = strings.TrimSpace(result)

	for _, a := range suffixAliases {
		if result == a.suffix {
			result = a.alias
			break
		}
		if strings.HasSuffix(result, " "+a.suffix) {
			result = strings.TrimSuffix(result, a.suffix) + a.alias
			break
		}
	}
	return result
}

// Equal reports whether two raw titles normalize to the same form
func Equal(a, b string) bool {
	return Title(a) == Title(b)
}

// Tokens splits a normalized title into its whitespace tokens
func Tokens(s string) []string {
	return strings.Fields(Title(s))
}

// foldAccents decomposes to NFKD and drops combining marks, so accented
// letters compare equal to their base form
func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
