package orchestrator

import (
	"context"

	"plansync/internal/host"
	"plansync/internal/models"
	"plansync/internal/protool"
)

// PlanSource delivers the next service plan in canonical form
type PlanSource interface {
	NextPlan(ctx context.Context) (*models.Plan, error)
}

// Host is the presentation host's control API surface the engine uses
type Host interface {
	Version(ctx context.Context) (string, error)
	Libraries(ctx context.Context) ([]host.NamedRef, error)
	LibraryItems(ctx context.Context, libraryUUID string) ([]host.NamedRef, error)
	Timers(ctx context.Context) ([]host.TimerDescriptor, error)
	CreateTimer(ctx context.Context, name string, seconds int) (*host.TimerDescriptor, error)
	StageLayouts(ctx context.Context) ([]host.NamedRef, error)
	StageScreens(ctx context.Context) ([]host.NamedRef, error)
	Props(ctx context.Context) ([]host.NamedRef, error)
	FindPlaylist(ctx context.Context, name string) (*host.NamedRef, error)
	CurrentRefs(ctx context.Context, playlistUUID string) ([]string, error)
	ReplacePlaylist(ctx context.Context, playlistUUID string, refs []string) error
	MediaPlaylists(ctx context.Context) ([]host.NamedRef, error)
	MediaPlaylistItems(ctx context.Context, playlistUUID, playlistName string) ([]models.MediaPlaylistItem, error)
}

// Rewriter drives the out-of-process document toolchain
type Rewriter interface {
	ApplyNotes(ctx context.Context, path, text string) error
	ApplySong(ctx context.Context, path string, payload protool.SongPayload) error
	ApplyTransition(ctx context.Context, path string, payload protool.TransitionPayload) error
	IndexLibrary(ctx context.Context, root string) ([]models.IndexEntry, error)
}

// AppControl manages the presentation application's process
type AppControl interface {
	Supported() bool
	IsRunning(ctx context.Context) (bool, error)
	Terminate(ctx context.Context) error
	Launch(ctx context.Context) error
}

// BackupStore keeps pre-rewrite copies and the run summary
type BackupStore interface {
	BackupOnce(path string) (string, error)
	RunDir() string
	Count() int
	WriteResult(result models.RunResult) error
}
