package models

import "time"

// ItemKind identifies the raw type a plan item carries at the source
type ItemKind string

const (
	KindSong         ItemKind = "song"
	KindVideo        ItemKind = "video"
	KindAnnouncement ItemKind = "announcement"
)

// Category is the service-flow bucket an item resolves to after classification
type Category string

const (
	CategorySong        Category = "Song"
	CategoryMessage     Category = "Message"
	CategoryTransitions Category = "Transitions"
	CategoryVideos      Category = "Videos"
	CategoryPreService  Category = "Pre Service"
	CategoryPostService Category = "Post Service"
)

// PlanItem is one row of a service plan
type PlanItem struct {
	ID            string       `json:"id"`
	Kind          ItemKind     `json:"kind"`
	Title         string       `json:"title"`
	Order         int          `json:"order"`
	IsHeader      bool         `json:"is_header"`
	LengthSeconds int          `json:"length_seconds,omitempty"`
	Description   string       `json:"description,omitempty"`
	Category      Category     `json:"category,omitempty"`
	Song          *SongDetails `json:"song,omitempty"`
}

// SongDetails carries the arrangement data resolved for a song item
type SongDetails struct {
	SongID          string          `json:"song_id"`
	ArrangementID   string          `json:"arrangement_id,omitempty"`
	ArrangementName string          `json:"arrangement_name,omitempty"`
	SequenceSummary string          `json:"sequence_summary,omitempty"`
	Sections        []SongSection   `json:"sections,omitempty"`
	Sequence        []SequenceEntry `json:"sequence,omitempty"`
}

// SongSection is one lyric block of an arrangement
type SongSection struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	SequenceLabel string     `json:"sequence_label,omitempty"`
	Lyrics        string     `json:"lyrics,omitempty"`
	LyricLines    []string   `json:"lyric_lines,omitempty"`
	LyricSlides   [][]string `json:"lyric_slides,omitempty"`
}

// SequenceEntry is one slot of an arrangement's running order. Entries with
// no lyrics (intro, turnaround, tag) still occupy a slot.
type SequenceEntry struct {
	ID        string `json:"id"`
	Position  int    `json:"position,omitempty"`
	Label     string `json:"label"`
	Number    string `json:"number,omitempty"`
	SectionID string `json:"section_id,omitempty"`
}

// Plan is one dated service plan, fully materialized before matching begins
// and immutable for the rest of the run
type Plan struct {
	ID    string     `json:"id"`
	Date  string     `json:"date"`
	Title string     `json:"title"`
	Items []PlanItem `json:"items"`
}

// Songs returns the non-header items classified as songs
func (p *Plan) Songs() []PlanItem {
	var out []PlanItem
	for _, it := range p.Items {
		if !it.IsHeader && it.Category == CategorySong {
			out = append(out, it)
		}
	}
	return out
}

// Candidate is a near-miss library asset offered for diagnostics
type Candidate struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// MatchResult records how one queried title resolved against the host library
type MatchResult struct {
	Matched    bool        `json:"matched"`
	UUID       string      `json:"uuid,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// MediaPlaylistItem is one asset of a host media playlist, flattened for
// keyword scoring
type MediaPlaylistItem struct {
	UUID         string   `json:"uuid"`
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	PlaylistUUID string   `json:"playlist_uuid,omitempty"`
	PlaylistName string   `json:"playlist_name,omitempty"`
	UpdatedAt    int64    `json:"updated_at,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	FilePath     string   `json:"file_path,omitempty"`
}

// Updated converts the epoch-millisecond timestamp, zero time when unknown
func (m *MediaPlaylistItem) Updated() time.Time {
	if m.UpdatedAt <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.UpdatedAt)
}

// Tally is the per-run mutation summary. The five buckets partition the
// processed items; no item is counted twice.
type Tally struct {
	Updated     int `json:"updated"`
	Skipped     int `json:"skipped"`
	NoDesc      int `json:"no_desc"`
	MissingPath int `json:"missing_path"`
	WriteErrors int `json:"write_errors"`
}

// Processed is the number of items that reached a terminal outcome
func (t Tally) Processed() int {
	return t.Updated + t.Skipped + t.NoDesc + t.MissingPath + t.WriteErrors
}

// ReopenResult describes how the relaunch and readiness phase ended
type ReopenResult struct {
	Attempted bool          `json:"attempted"`
	Ready     bool          `json:"ready"`
	Elapsed   time.Duration `json:"elapsed"`
	LastError string        `json:"last_error,omitempty"`
}

// StateEvent is one orchestrator state transition
type StateEvent struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at"`
	Note string    `json:"note,omitempty"`
}

// RunResult is the structured outcome of one orchestrator run.
// Categories keys are matched host asset uuids.
type RunResult struct {
	RunID      string              `json:"run_id"`
	PlanID     string              `json:"plan_id"`
	PlanTitle  string              `json:"plan_title"`
	PlanDate   string              `json:"plan_date"`
	Tally      Tally               `json:"tally"`
	Categories map[string]Category `json:"categories"`
	Reopen     ReopenResult        `json:"reopen"`
	Events     []StateEvent        `json:"events"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

// IndexEntry maps one presentation document to its file on disk
type IndexEntry struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
	Path  string `json:"path"`
}
