package orchestrator

// State identifies one phase of a sync run. Transitions are recorded in the
// run's event log, so a failed run shows exactly how far it got.
type State int

const (
	StateIdle State = iota
	StateFetchingPlan
	StateResolvingHost
	StateStoppingApp
	StateIndexing
	StateRewriting
	StateRestarting
	StateVerifyingReady
	StateSyncingPlaylist
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateFetchingPlan:    "fetching_plan",
	StateResolvingHost:   "resolving_host",
	StateStoppingApp:     "stopping_app",
	StateIndexing:        "indexing",
	StateRewriting:       "rewriting",
	StateRestarting:      "restarting",
	StateVerifyingReady:  "verifying_ready",
	StateSyncingPlaylist: "syncing_playlist",
	StateDone:            "done",
	StateFailed:          "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
