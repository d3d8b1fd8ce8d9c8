package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plansync/internal/models"
)

func TestChangedReflexive(t *testing.T) {
	sequences := [][]string{
		nil,
		{},
		{"p:A"},
		{"p:A", "h:intro", "p:B"},
	}
	for _, seq := range sequences {
		assert.False(t, Changed(seq, seq), "diff(X, X) must be unchanged for %v", seq)
	}
}

func TestChangedOrderMatters(t *testing.T) {
	desired := []string{"p:A", "h:intro", "p:B"}

	assert.False(t, Changed([]string{"p:A", "h:intro", "p:B"}, desired))
	assert.True(t, Changed([]string{"p:B", "h:intro", "p:A"}, desired))
}

func TestChangedLength(t *testing.T) {
	assert.True(t, Changed([]string{"p:A"}, []string{"p:A", "p:B"}))
	assert.True(t, Changed([]string{"p:A", "p:B"}, nil))
	assert.False(t, Changed(nil, []string{}))
}

func TestHeaderRefNormalizes(t *testing.T) {
	assert.Equal(t, HeaderRef("pre-service"), HeaderRef("Pre-Service"))
	assert.Equal(t, "h:worship", HeaderRef("Worship (Song)"))
	assert.Equal(t, "p:1234", PresentationRef("1234"))
}

func TestRefHelpers(t *testing.T) {
	assert.True(t, IsHeaderRef(HeaderRef("Intro")))
	assert.False(t, IsHeaderRef(PresentationRef("abc")))
	assert.Equal(t, "abc", RefName(PresentationRef("abc")))
	assert.Equal(t, "intro", RefName(HeaderRef("Intro")))
}

func TestDesiredRefs(t *testing.T) {
	plan := &models.Plan{
		Items: []models.PlanItem{
			{Title: "SERVICE", IsHeader: true},
			{Title: "Living Hope"},
			{Title: "Unmatched Song"},
			{Title: "Welcome"},
		},
	}
	matches := map[string]models.MatchResult{
		"Living Hope":    {Matched: true, UUID: "u1"},
		"Unmatched Song": {Matched: false},
		"Welcome":        {Matched: true, UUID: "u2"},
	}

	refs := DesiredRefs(plan, matches)

	assert.Equal(t, []string{"h:service", "p:u1", "p:u2"}, refs)
}

func TestRenderDiff(t *testing.T) {
	out := RenderDiff([]string{"p:A", "p:B"}, []string{"p:A", "p:C"})

	assert.Contains(t, out, "-p:B")
	assert.Contains(t, out, "+p:C")
	assert.Contains(t, out, "--- current")
}
