package protool

// Payload structures handed to the rewrite toolchain as JSON. Field names
// are the toolchain's wire contract; change them only together with the
// scripts.

// SongPayload rebuilds a song presentation: slides per section plus the
// arrangement running order
type SongPayload struct {
	Title            string         `json:"title"`
	ArrangementName  string         `json:"arrangementName,omitempty"`
	GroupName        string         `json:"groupName,omitempty"`
	Sections         []SongSection  `json:"sections"`
	Sequence         []SequenceSlot `json:"sequence,omitempty"`
	TimerSeconds     int            `json:"timerSeconds,omitempty"`
	Timer            *TimerRef      `json:"timerDescriptor,omitempty"`
	AudienceLookName string         `json:"audienceLookName,omitempty"`
	StageLayout      *StageLayout   `json:"stageLayout,omitempty"`
}

// SongSection is one titled slide group. Non-lyric sections carry an empty
// slides list and survive as structural placeholders.
type SongSection struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name"`
	SequenceLabel string     `json:"sequenceLabel,omitempty"`
	Slides        [][]string `json:"slides"`
}

// SequenceSlot is one arrangement running-order entry
type SequenceSlot struct {
	Label     string `json:"label"`
	Number    string `json:"number,omitempty"`
	SectionID string `json:"sectionId,omitempty"`
}

// TimerRef names the countdown timer a cue should fire
type TimerRef struct {
	Name          string `json:"name"`
	UUID          string `json:"uuid,omitempty"`
	AllowsOverrun bool   `json:"allowsOverrun"`
}

// StageLayout names the stage display layout and its screen assignments
type StageLayout struct {
	LayoutName  string            `json:"layoutName"`
	LayoutUUID  string            `json:"layoutUuid,omitempty"`
	Assignments []StageAssignment `json:"assignments,omitempty"`
}

// StageAssignment maps one stage screen to the layout
type StageAssignment struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// TransitionPayload rebuilds a transition presentation: a base cue plus one
// cue per topic with clears interleaved
type TransitionPayload struct {
	Label            string       `json:"label"`
	AudienceLookName string       `json:"audienceLookName,omitempty"`
	TimerSeconds     int          `json:"timerSeconds,omitempty"`
	Timer            *TimerRef    `json:"timer,omitempty"`
	StageLayout      *StageLayout `json:"stageLayout,omitempty"`
	Topics           []Topic      `json:"topics"`
	ClearProp        *PropRef     `json:"clearProp,omitempty"`
	LowerThird       *LowerThird  `json:"lowerThird,omitempty"`
}

// Topic is one bullet-extracted phrase and its resolved media, when scoring
// found one worth attaching
type Topic struct {
	Topic string      `json:"topic"`
	Media *TopicMedia `json:"media,omitempty"`
}

// TopicMedia points a topic cue at a host media asset or a local file
type TopicMedia struct {
	UUID         string  `json:"uuid,omitempty"`
	FilePath     string  `json:"filePath,omitempty"`
	Name         string  `json:"name,omitempty"`
	PlaylistUUID string  `json:"playlistUuid,omitempty"`
	PlaylistName string  `json:"playlistName,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

// PropRef names the prop cleared between topics
type PropRef struct {
	UUID string `json:"propUuid"`
	Name string `json:"propName,omitempty"`
}

// LowerThird is a locally resolved graphic referenced by bracketed name in
// the item description
type LowerThird struct {
	Name     string `json:"name"`
	FilePath string `json:"filePath,omitempty"`
}
