package playlist

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"plansync/internal/models"
	"plansync/internal/normalize"
)

// Reference prefixes distinguish presentations from section headers inside
// one flat playlist sequence
const (
	presentationPrefix = "p:"
	headerPrefix       = "h:"
)

// PresentationRef keys a playlist entry by its host document uuid
func PresentationRef(uuid string) string {
	return presentationPrefix + uuid
}

// HeaderRef keys a playlist header entry by its normalized name, so header
// identity survives cosmetic retitling
func HeaderRef(name string) string {
	return headerPrefix + normalize.Title(name)
}

// IsHeaderRef reports whether a typed reference names a header entry
func IsHeaderRef(ref string) bool {
	return strings.HasPrefix(ref, headerPrefix)
}

// RefName strips the type prefix from a reference
func RefName(ref string) string {
	if IsHeaderRef(ref) {
		return strings.TrimPrefix(ref, headerPrefix)
	}
	return strings.TrimPrefix(ref, presentationPrefix)
}

// Changed compares the current and desired sequences positionally. Any
// difference triggers a full replacement upstream; there is no partial
// reordering path because the host's replace call is atomic and idempotent.
func Changed(current, desired []string) bool {
	if len(current) != len(desired) {
		return true
	}
	for i := range current {
		if current[i] != desired[i] {
			return true
		}
	}
	return false
}

// DesiredRefs builds the reference sequence a plan wants: headers become
// header refs, matched items become presentation refs, unmatched items are
// left out entirely
func DesiredRefs(plan *models.Plan, matches map[string]models.MatchResult) []string {
	var refs []string
	for _, item := range plan.Items {
		if item.IsHeader {
			refs = append(refs, HeaderRef(item.Title))
			continue
		}
		if mr, ok := matches[item.Title]; ok && mr.Matched {
			refs = append(refs, PresentationRef(mr.UUID))
		}
	}
	return refs
}

// RenderDiff formats a unified diff of the two sequences for run logs
func RenderDiff(current, desired []string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(current, "\n")),
		B:        difflib.SplitLines(strings.Join(desired, "\n")),
		FromFile: "current",
		ToFile:   "desired",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
