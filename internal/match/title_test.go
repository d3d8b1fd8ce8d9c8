package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSnapshot() []Asset {
	return []Asset{
		{UUID: "u1", Name: "Living Hope"},
		{UUID: "u2", Name: "King of Kings"},
		{UUID: "u3", Name: "Living Hope (Acoustic)"},
		{UUID: "u4", Name: "What A Beautiful Name"},
	}
}

func TestTitlesExactMatch(t *testing.T) {
	results := Titles([]string{"LIVING HOPE", "King Of Kings!"}, makeSnapshot())

	require.Len(t, results, 2)
	assert.True(t, results["LIVING HOPE"].Matched)
	assert.Equal(t, "u1", results["LIVING HOPE"].UUID)
	assert.True(t, results["King Of Kings!"].Matched)
	assert.Equal(t, "u2", results["King Of Kings!"].UUID)
}

func TestTitlesFirstAssetWinsDuplicateNames(t *testing.T) {
	snapshot := []Asset{
		{UUID: "old", Name: "Living Hope"},
		{UUID: "new", Name: "living hope"},
	}
	results := Titles([]string{"Living Hope"}, snapshot)
	assert.Equal(t, "old", results["Living Hope"].UUID)
}

func TestTitlesCandidatesOnMiss(t *testing.T) {
	snapshot := []Asset{
		{UUID: "u1", Name: "Living Hope Acoustic Mix"},
		{UUID: "u2", Name: "King of Kings"},
		{UUID: "u3", Name: "Hope Living Extended"},
	}
	results := Titles([]string{"Living Hope"}, snapshot)

	r := results["Living Hope"]
	assert.False(t, r.Matched)
	require.Len(t, r.Candidates, 2)
	// Snapshot order, not ranked
	assert.Equal(t, "u1", r.Candidates[0].UUID)
	assert.Equal(t, "u3", r.Candidates[1].UUID)
}

func TestTitlesCandidatesBounded(t *testing.T) {
	var snapshot []Asset
	for i := 0; i < 8; i++ {
		snapshot = append(snapshot, Asset{
			UUID: string(rune('a' + i)),
			Name: "Hope Variation " + string(rune('A'+i)),
		})
	}
	results := Titles([]string{"Hope"}, snapshot)

	r := results["Hope"]
	assert.False(t, r.Matched)
	assert.Len(t, r.Candidates, maxCandidates)
}

func TestTitlesNoMatchNoCandidates(t *testing.T) {
	results := Titles([]string{"Completely Unknown"}, makeSnapshot())

	r := results["Completely Unknown"]
	assert.False(t, r.Matched)
	assert.Nil(t, r.Candidates)
}

func TestTitlesEmptyQuery(t *testing.T) {
	results := Titles([]string{"", "(instrumental)"}, makeSnapshot())

	assert.False(t, results[""].Matched)
	assert.Nil(t, results[""].Candidates)
	assert.False(t, results["(instrumental)"].Matched)
	assert.Nil(t, results["(instrumental)"].Candidates)
}
