package protool

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// Golden files pin the toolchain wire contract. Regenerate with
// go test ./internal/protool -update after a deliberate contract change.

func assertGoldenPayload(t *testing.T, name string, payload any) {
	t.Helper()

	data, err := json.MarshalIndent(payload, "", "  ")
	require.NoError(t, err)
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

func TestSongPayloadContract(t *testing.T) {
	payload := SongPayload{
		Title:           "Living Hope",
		ArrangementName: "Standard",
		Sections: []SongSection{
			{
				ID:            "sec-1",
				Name:          "Verse 1",
				SequenceLabel: "Verse",
				Slides:        [][]string{{"Line one", "Line two"}},
			},
			{
				ID:            "sec-2",
				Name:          "Instrumental",
				SequenceLabel: "Instrumental",
				Slides:        [][]string{},
			},
		},
		Sequence: []SequenceSlot{
			{Label: "Verse", Number: "1", SectionID: "sec-1"},
			{Label: "Instrumental", SectionID: "sec-2"},
		},
		TimerSeconds:     300,
		Timer:            &TimerRef{Name: "Service Timer", UUID: "11111111-2222-3333-4444-555555555555", AllowsOverrun: true},
		AudienceLookName: "Full Screen Media",
		StageLayout: &StageLayout{
			LayoutName: "Band",
			LayoutUUID: "66666666-7777-8888-9999-000000000000",
			Assignments: []StageAssignment{
				{UUID: "aaaa0000-0000-0000-0000-000000000001", Name: "Stage Left"},
			},
		},
	}

	assertGoldenPayload(t, "song_payload", payload)
}

func TestTransitionPayloadContract(t *testing.T) {
	payload := TransitionPayload{
		Label:            "Background & Lights",
		AudienceLookName: "Full Screen Media",
		TimerSeconds:     600,
		Timer:            &TimerRef{Name: "Service Timer"},
		StageLayout:      &StageLayout{LayoutName: "Speaker"},
		Topics: []Topic{
			{
				Topic: "Dismiss LIFE Youth Jr.",
				Media: &TopicMedia{
					UUID:         "m-1",
					Name:         "LIFE Youth Jr Dismiss",
					PlaylistUUID: "pl-1",
					PlaylistName: "Announcements",
					Score:        42.5,
				},
			},
			{Topic: "Prayer Team"},
		},
		ClearProp:  &PropRef{UUID: "prop-1", Name: "Logo"},
		LowerThird: &LowerThird{Name: "welcome", FilePath: "/media/lower thirds/welcome.png"},
	}

	assertGoldenPayload(t, "transition_payload", payload)
}
