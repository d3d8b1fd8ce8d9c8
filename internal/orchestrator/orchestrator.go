package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"plansync/internal/config"
	"plansync/internal/host"
	"plansync/internal/match"
	"plansync/internal/models"
	"plansync/internal/normalize"
	"plansync/internal/playlist"
	"plansync/internal/protool"
)

// readyPollInterval paces the host readiness probe after a relaunch
const readyPollInterval = 250 * time.Millisecond

// defaultTimerSeconds seeds a countdown timer created on the fly; each cue
// carries its own duration anyway
const defaultTimerSeconds = 600

// Engine coordinates one sync run: fetch the plan, resolve host entities,
// stop the application, rewrite documents, relaunch, and reconcile the
// service playlist. All collaborators come in through interfaces; the engine
// itself holds no network or process code.
type Engine struct {
	cfg       *config.Config
	plans     PlanSource
	host      Host
	tool      Rewriter
	app       AppControl
	backups   BackupStore
	logger    *slog.Logger
	overrides []match.Override

	state  State
	events []models.StateEvent

	// uuid to file path, built once per process on first use
	fileIndex map[string]string
}

// Options scopes and shapes a single run
type Options struct {
	RunID          string
	DryRun         bool
	Categories     []models.Category
	ItemIDs        []string
	Reopen         bool
	UpdatePlaylist bool
}

// New wires an engine from its collaborators
func New(cfg *config.Config, plans PlanSource, hostAPI Host, tool Rewriter, app AppControl, backups BackupStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		plans:     plans,
		host:      hostAPI,
		tool:      tool,
		app:       app,
		backups:   backups,
		logger:    logger,
		overrides: cfg.CompiledOverrides(),
		state:     StateIdle,
	}
}

// hostContext is everything resolved from the live host before the
// application goes down for rewriting
type hostContext struct {
	libraryName  string
	matches      map[string]models.MatchResult
	timer        *protool.TimerRef
	stageLayout  *protool.StageLayout
	clearProp    *protool.PropRef
	audienceLook string
	media        []models.MediaPlaylistItem
}

// Run executes one full sync. The returned result is populated even when
// err is non-nil; its event log shows where the run stopped.
func (e *Engine) Run(ctx context.Context, opts Options) (*models.RunResult, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()[:8]
	}

	result := &models.RunResult{
		RunID:      runID,
		Categories: make(map[string]models.Category),
		StartedAt:  time.Now(),
	}
	e.state = StateIdle
	e.events = nil

	defer func() {
		result.Events = e.events
		result.FinishedAt = time.Now()
		if e.backups != nil && !opts.DryRun {
			if err := e.backups.WriteResult(*result); err != nil {
				e.logger.Warn("could not persist run result", "error", err)
			}
		}
	}()

	fail := func(err error) (*models.RunResult, error) {
		e.transition(StateFailed, err.Error())
		return result, err
	}

	e.transition(StateFetchingPlan, "")
	plan, err := e.plans.NextPlan(ctx)
	if err != nil {
		return fail(fmt.Errorf("fetching plan: %w", err))
	}
	result.PlanID = plan.ID
	result.PlanTitle = plan.Title
	result.PlanDate = plan.Date
	e.logger.Info("plan fetched", "plan", plan.Title, "date", plan.Date, "items", len(plan.Items))

	scoped := scopeItems(plan.Items, opts)
	if len(scoped) == 0 {
		e.logger.Warn("nothing in scope for this run")
	}

	e.transition(StateResolvingHost, "")
	hctx, err := e.resolveHostContext(ctx, plan, scoped, opts)
	if err != nil {
		return fail(err)
	}
	for _, item := range plan.Items {
		if item.IsHeader {
			continue
		}
		if m, ok := hctx.matches[item.Title]; ok && m.Matched {
			result.Categories[m.UUID] = item.Category
		}
	}

	// The host API is served by the application itself, so everything that
	// needs it is resolved before the stop and the playlist write waits for
	// the relaunch.
	stopped := false
	appDown := false
	defer func() {
		if stopped {
			e.reopen(ctx, opts, result)
		}
	}()

	if !opts.DryRun && e.app.Supported() {
		e.transition(StateStoppingApp, "")
		if err := e.app.Terminate(ctx); err != nil {
			return fail(fmt.Errorf("stopping application: %w", err))
		}
		stopped = true
		appDown = true
	}

	e.transition(StateIndexing, "")
	index, err := e.ensureFileIndex(ctx)
	if err != nil {
		return fail(fmt.Errorf("indexing library: %w", err))
	}

	e.transition(StateRewriting, fmt.Sprintf("%d items in scope", len(scoped)))
	result.Tally = e.rewriteItems(ctx, scoped, hctx, index, opts)

	if stopped {
		stopped = false
		e.reopen(ctx, opts, result)
		appDown = !result.Reopen.Ready
	}

	if opts.UpdatePlaylist {
		if !appDown {
			e.transition(StateSyncingPlaylist, "")
			changed, diff, err := e.syncServicePlaylist(ctx, plan, hctx.matches, opts.DryRun)
			if err != nil {
				return fail(fmt.Errorf("syncing playlist: %w", err))
			}
			if changed {
				e.logger.Info("service playlist updated", "dry_run", opts.DryRun)
				e.logger.Debug("playlist diff", "diff", diff)
			} else {
				e.logger.Info("service playlist already in order")
			}
		} else {
			e.logger.Warn("skipping playlist sync, host API not available")
		}
	}

	e.transition(StateDone, "")
	e.logger.Info("run finished",
		"updated", result.Tally.Updated,
		"skipped", result.Tally.Skipped,
		"no_desc", result.Tally.NoDesc,
		"missing_path", result.Tally.MissingPath,
		"write_errors", result.Tally.WriteErrors)
	return result, nil
}

// SyncPlaylist reconciles only the service playlist, leaving documents and
// the application untouched
func (e *Engine) SyncPlaylist(ctx context.Context, dryRun bool) (bool, string, error) {
	plan, err := e.plans.NextPlan(ctx)
	if err != nil {
		return false, "", fmt.Errorf("fetching plan: %w", err)
	}
	matches, _, err := e.resolveMatches(ctx, plan)
	if err != nil {
		return false, "", err
	}
	return e.syncServicePlaylist(ctx, plan, matches, dryRun)
}

// Matches resolves every plan item title against the host library without
// writing anything
func (e *Engine) Matches(ctx context.Context, plan *models.Plan) (map[string]models.MatchResult, error) {
	matches, _, err := e.resolveMatches(ctx, plan)
	return matches, err
}

// State returns the engine's current phase
func (e *Engine) State() State {
	return e.state
}

// Events returns the transition log of the last run
func (e *Engine) Events() []models.StateEvent {
	return e.events
}

func (e *Engine) transition(to State, note string) {
	event := models.StateEvent{
		From: e.state.String(),
		To:   to.String(),
		At:   time.Now(),
		Note: note,
	}
	e.events = append(e.events, event)
	e.logger.Debug("state transition", "from", event.From, "to", event.To, "note", note)
	e.state = to
}

// scopeItems filters plan items down to what this run should rewrite.
// Headers never carry documents and are excluded here; they still flow into
// the playlist reconciliation.
func scopeItems(items []models.PlanItem, opts Options) []models.PlanItem {
	cats := make(map[models.Category]bool, len(opts.Categories))
	for _, c := range opts.Categories {
		cats[c] = true
	}
	ids := make(map[string]bool, len(opts.ItemIDs))
	for _, id := range opts.ItemIDs {
		ids[id] = true
	}

	var out []models.PlanItem
	for _, item := range items {
		if item.IsHeader {
			continue
		}
		if len(cats) > 0 && !cats[item.Category] {
			continue
		}
		if len(ids) > 0 && !ids[item.ID] {
			continue
		}
		out = append(out, item)
	}
	return out
}

// resolveMatches snapshots every host library and matches plan item titles
// against the merged set. The configured library is indexed first so its
// assets shadow same-named documents elsewhere.
func (e *Engine) resolveMatches(ctx context.Context, plan *models.Plan) (map[string]models.MatchResult, string, error) {
	version, err := e.host.Version(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("host not reachable: %w", err)
	}
	e.logger.Debug("host reachable", "version", version)

	libraries, err := e.host.Libraries(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("listing libraries: %w", err)
	}
	if len(libraries) == 0 {
		return nil, "", fmt.Errorf("host has no presentation libraries")
	}

	primary := 0
	if want := normalize.Title(e.cfg.Host.LibraryName); want != "" {
		primary = -1
		for i, lib := range libraries {
			if normalize.Title(lib.Name) == want {
				primary = i
				break
			}
		}
		if primary < 0 {
			return nil, "", fmt.Errorf("library %q not found on host", e.cfg.Host.LibraryName)
		}
	}
	libraries[0], libraries[primary] = libraries[primary], libraries[0]

	itemsByLib := make([][]host.NamedRef, len(libraries))
	errs := make([]error, len(libraries))
	var wg sync.WaitGroup
	for i, lib := range libraries {
		wg.Add(1)
		go func(i int, lib host.NamedRef) {
			defer wg.Done()
			itemsByLib[i], errs[i] = e.host.LibraryItems(ctx, lib.UUID)
		}(i, lib)
	}
	wg.Wait()

	// the primary library is required; any other library degrades to a warning
	if errs[0] != nil {
		return nil, "", fmt.Errorf("listing library %q: %w", libraries[0].Name, errs[0])
	}

	var snapshot []match.Asset
	for i, items := range itemsByLib {
		if errs[i] != nil {
			e.logger.Warn("skipping library", "library", libraries[i].Name, "error", errs[i])
			continue
		}
		for _, it := range items {
			snapshot = append(snapshot, match.Asset{UUID: it.UUID, Name: it.Name})
		}
	}

	var queries []string
	for _, item := range plan.Items {
		if !item.IsHeader {
			queries = append(queries, item.Title)
		}
	}
	return match.Titles(queries, snapshot), libraries[0].Name, nil
}

// resolveHostContext gathers everything the rewrite phase needs from the
// live host: title matches, the countdown timer, the clear prop, the stage
// layout, and media items for topic scoring
func (e *Engine) resolveHostContext(ctx context.Context, plan *models.Plan, scoped []models.PlanItem, opts Options) (*hostContext, error) {
	matches, libraryName, err := e.resolveMatches(ctx, plan)
	if err != nil {
		return nil, err
	}

	hctx := &hostContext{
		libraryName:  libraryName,
		matches:      matches,
		audienceLook: e.cfg.Host.AudienceLook,
	}

	needsCues := false
	for _, item := range scoped {
		if item.Category == models.CategoryTransitions {
			needsCues = true
			break
		}
	}
	if !needsCues {
		return hctx, nil
	}

	hctx.timer = e.resolveTimer(ctx, opts)
	hctx.clearProp = e.resolveClearProp(ctx)
	hctx.stageLayout = e.resolveStageLayout(ctx)
	hctx.media = e.collectMediaItems(ctx)
	return hctx, nil
}

// resolveTimer finds the configured countdown timer, creating it when the
// host does not have one yet
func (e *Engine) resolveTimer(ctx context.Context, opts Options) *protool.TimerRef {
	name := e.cfg.Host.TimerName
	if name == "" {
		return nil
	}

	timers, err := e.host.Timers(ctx)
	if err != nil {
		e.logger.Warn("listing timers failed", "error", err)
		return nil
	}
	want := normalize.Title(name)
	for _, t := range timers {
		if normalize.Title(t.Name) == want {
			return &protool.TimerRef{Name: t.Name, UUID: t.UUID, AllowsOverrun: t.AllowsOverrun}
		}
	}

	if opts.DryRun {
		e.logger.Info("dry run: would create timer", "name", name)
		return &protool.TimerRef{Name: name, AllowsOverrun: true}
	}

	created, err := e.host.CreateTimer(ctx, name, defaultTimerSeconds)
	if err != nil {
		e.logger.Warn("creating timer failed", "name", name, "error", err)
		return nil
	}
	e.logger.Info("created countdown timer", "name", name, "uuid", created.UUID)
	return &protool.TimerRef{Name: created.Name, UUID: created.UUID, AllowsOverrun: created.AllowsOverrun}
}

func (e *Engine) resolveClearProp(ctx context.Context) *protool.PropRef {
	name := e.cfg.Host.ClearProp
	if name == "" {
		return nil
	}

	props, err := e.host.Props(ctx)
	if err != nil {
		e.logger.Warn("listing props failed", "error", err)
		return nil
	}
	want := normalize.Title(name)
	for _, p := range props {
		if normalize.Title(p.Name) == want {
			return &protool.PropRef{UUID: p.UUID, Name: p.Name}
		}
	}
	e.logger.Warn("clear prop not found on host", "name", name)
	return nil
}

func (e *Engine) resolveStageLayout(ctx context.Context) *protool.StageLayout {
	name := e.cfg.Host.StageLayout
	if name == "" {
		return nil
	}

	layouts, err := e.host.StageLayouts(ctx)
	if err != nil {
		e.logger.Warn("listing stage layouts failed", "error", err)
		return nil
	}
	want := normalize.Title(name)
	for _, l := range layouts {
		if normalize.Title(l.Name) != want {
			continue
		}
		layout := &protool.StageLayout{LayoutName: l.Name, LayoutUUID: l.UUID}
		screens, err := e.host.StageScreens(ctx)
		if err != nil {
			e.logger.Warn("listing stage screens failed", "error", err)
			return layout
		}
		for _, s := range screens {
			layout.Assignments = append(layout.Assignments, protool.StageAssignment{UUID: s.UUID, Name: s.Name})
		}
		return layout
	}
	e.logger.Warn("stage layout not found on host", "name", name)
	return nil
}

// collectMediaItems flattens every media playlist into one scoring pool
func (e *Engine) collectMediaItems(ctx context.Context) []models.MediaPlaylistItem {
	playlists, err := e.host.MediaPlaylists(ctx)
	if err != nil {
		e.logger.Warn("listing media playlists failed", "error", err)
		return nil
	}

	var all []models.MediaPlaylistItem
	for _, p := range playlists {
		items, err := e.host.MediaPlaylistItems(ctx, p.UUID, p.Name)
		if err != nil {
			e.logger.Warn("reading media playlist failed", "playlist", p.Name, "error", err)
			continue
		}
		all = append(all, items...)
	}
	e.logger.Debug("media pool collected", "playlists", len(playlists), "items", len(all))
	return all
}

// ensureFileIndex builds the uuid-to-path index on first use and reuses it
// for the rest of the process
func (e *Engine) ensureFileIndex(ctx context.Context) (map[string]string, error) {
	if e.fileIndex != nil {
		return e.fileIndex, nil
	}

	entries, err := e.tool.IndexLibrary(ctx, e.cfg.Host.LibraryRoot)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(entries))
	for _, entry := range entries {
		if _, ok := index[entry.UUID]; !ok {
			index[entry.UUID] = entry.Path
		}
	}
	e.fileIndex = index
	e.logger.Info("library indexed", "documents", len(index))
	return index, nil
}

// itemWrite is one pending toolchain call for a plan item
type itemWrite struct {
	name  string
	apply func() error
}

// plannedWrites lists the toolchain calls an item needs: a template rebuild
// for songs with resolved sections and for transition cues, then the operator
// notes whenever a description exists. Notes run after the template so a full
// rebuild never overwrites them.
func (e *Engine) plannedWrites(ctx context.Context, item models.PlanItem, hctx *hostContext, path string) []itemWrite {
	var writes []itemWrite
	if item.Song != nil && len(item.Song.Sections) > 0 {
		writes = append(writes, itemWrite{"song", func() error {
			return e.tool.ApplySong(ctx, path, buildSongPayload(item))
		}})
	} else if item.Category == models.CategoryTransitions {
		writes = append(writes, itemWrite{"transition", func() error {
			return e.tool.ApplyTransition(ctx, path, e.buildTransitionPayload(item, hctx))
		}})
	}
	if description := cleanDescription(item.Description); description != "" {
		writes = append(writes, itemWrite{"notes", func() error {
			return e.tool.ApplyNotes(ctx, path, description)
		}})
	}
	return writes
}

func writeNames(writes []itemWrite) []string {
	names := make([]string, 0, len(writes))
	for _, w := range writes {
		names = append(names, w.name)
	}
	return names
}

// rewriteItems pushes each scoped item through the toolchain and tallies the
// outcomes. Every item lands in exactly one bucket; an item with several
// writes counts as updated when at least one succeeded and as a write error
// only when all of them failed.
func (e *Engine) rewriteItems(ctx context.Context, scoped []models.PlanItem, hctx *hostContext, index map[string]string, opts Options) models.Tally {
	var tally models.Tally

	for _, item := range scoped {
		mr := hctx.matches[item.Title]
		if !mr.Matched {
			tally.Skipped++
			e.logger.Info("no library match", "title", item.Title, "candidates", len(mr.Candidates))
			for _, cand := range mr.Candidates {
				e.logger.Debug("near miss", "title", item.Title, "candidate", cand.Name)
			}
			continue
		}

		path := index[mr.UUID]
		if path == "" {
			tally.MissingPath++
			e.logger.Warn("matched document not in file index", "title", item.Title, "uuid", mr.UUID)
			continue
		}

		writes := e.plannedWrites(ctx, item, hctx, path)
		if len(writes) == 0 {
			tally.NoDesc++
			e.logger.Info("nothing to write, no description", "title", item.Title)
			continue
		}

		if opts.DryRun {
			tally.Updated++
			e.logger.Info("dry run: would rewrite", "title", item.Title, "path", path, "writes", writeNames(writes))
			continue
		}

		if e.backups != nil {
			if _, err := e.backups.BackupOnce(path); err != nil {
				e.logger.Warn("backup failed", "path", path, "error", err)
			}
		}

		succeeded := 0
		for _, w := range writes {
			if err := w.apply(); err != nil {
				e.logger.Error("rewrite failed", "title", item.Title, "write", w.name, "error", err)
				continue
			}
			succeeded++
			e.logger.Info("document rewritten", "title", item.Title, "write", w.name)
		}
		if succeeded > 0 {
			tally.Updated++
		} else {
			tally.WriteErrors++
		}
	}
	return tally
}

// buildSongPayload maps resolved arrangement data onto the toolchain contract
func buildSongPayload(item models.PlanItem) protool.SongPayload {
	payload := protool.SongPayload{Title: item.Title}
	details := item.Song
	if details == nil {
		return payload
	}

	payload.ArrangementName = details.ArrangementName
	for _, section := range details.Sections {
		slides := section.LyricSlides
		if slides == nil {
			slides = [][]string{}
		}
		payload.Sections = append(payload.Sections, protool.SongSection{
			ID:            section.ID,
			Name:          section.Name,
			SequenceLabel: section.SequenceLabel,
			Slides:        slides,
		})
	}
	for _, slot := range details.Sequence {
		payload.Sequence = append(payload.Sequence, protool.SequenceSlot{
			Label:     slot.Label,
			Number:    slot.Number,
			SectionID: slot.SectionID,
		})
	}
	return payload
}

// buildTransitionPayload assembles the cue rebuild for a transition item:
// base cue with look, timer, and stage layout, one cue per extracted topic
// with scored media, and the optional lower third
func (e *Engine) buildTransitionPayload(item models.PlanItem, hctx *hostContext) protool.TransitionPayload {
	payload := protool.TransitionPayload{
		Label:            e.cfg.Sync.TransitionLabel,
		AudienceLookName: hctx.audienceLook,
		TimerSeconds:     item.LengthSeconds,
		Timer:            hctx.timer,
		StageLayout:      hctx.stageLayout,
		ClearProp:        hctx.clearProp,
		Topics:           []protool.Topic{},
	}

	for _, topic := range extractTopics(item.Description) {
		entry := protool.Topic{Topic: topic}
		selected, score := match.SelectMedia(topic, hctx.media, time.Now(), e.overrides)
		if selected != nil {
			entry.Media = &protool.TopicMedia{
				UUID:         selected.UUID,
				FilePath:     selected.FilePath,
				Name:         selected.Name,
				PlaylistUUID: selected.PlaylistUUID,
				PlaylistName: selected.PlaylistName,
				Score:        score,
			}
			e.logger.Debug("topic media selected", "topic", topic, "media", selected.Name, "score", score)
		} else {
			e.logger.Info("no media for topic", "topic", topic, "best_score", score)
		}
		payload.Topics = append(payload.Topics, entry)
	}

	if name := extractLowerThird(item.Description); name != "" {
		payload.LowerThird = e.resolveLowerThird(name)
	}
	return payload
}

// lowerThirdPattern pulls the first bracket-delimited name out of a
// description
var lowerThirdPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// extractTopics reads the bullet lines of a description as cue topics
func extractTopics(description string) []string {
	var topics []string
	for _, line := range strings.Split(cleanDescription(description), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "•") {
			continue
		}
		topic := strings.TrimSpace(strings.TrimPrefix(line, "•"))
		if topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}

// extractLowerThird returns the bracketed lower-third name, if any
func extractLowerThird(description string) string {
	m := lowerThirdPattern.FindStringSubmatch(description)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// resolveLowerThird looks the named graphic up in the configured directory
// by normalized file stem. A missing file still produces a named entry so
// the cue keeps its placeholder.
func (e *Engine) resolveLowerThird(name string) *protool.LowerThird {
	entry := &protool.LowerThird{Name: name}
	dir := e.cfg.Sync.LowerThirdsDir
	if dir == "" {
		return entry
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		e.logger.Warn("reading lower thirds directory failed", "dir", dir, "error", err)
		return entry
	}
	want := normalize.Title(name)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		if normalize.Title(stem) == want {
			entry.FilePath = filepath.Join(dir, f.Name())
			return entry
		}
	}
	e.logger.Warn("lower third not found", "name", name, "dir", dir)
	return entry
}

// cleanDescription normalizes line endings and trims the description
func cleanDescription(description string) string {
	s := strings.ReplaceAll(description, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// reopen relaunches the application and polls the host API until it answers
// or the ready timeout passes
func (e *Engine) reopen(ctx context.Context, opts Options, result *models.RunResult) {
	if !opts.Reopen {
		e.logger.Info("leaving application closed")
		return
	}

	e.transition(StateRestarting, "")
	start := time.Now()
	result.Reopen.Attempted = true

	if err := e.app.Launch(ctx); err != nil {
		result.Reopen.LastError = err.Error()
		result.Reopen.Elapsed = time.Since(start)
		e.logger.Error("relaunch failed", "error", err)
		return
	}

	e.transition(StateVerifyingReady, "")
	result.Reopen.Ready = e.pollReady(ctx, result)
	result.Reopen.Elapsed = time.Since(start)
	if result.Reopen.Ready {
		e.logger.Info("application ready", "elapsed", result.Reopen.Elapsed.Round(time.Millisecond))
	} else {
		e.logger.Warn("application did not become ready", "waited", result.Reopen.Elapsed.Round(time.Second))
	}
}

func (e *Engine) pollReady(ctx context.Context, result *models.RunResult) bool {
	deadline := time.Now().Add(e.cfg.Sync.ReadyTimeout())
	for time.Now().Before(deadline) {
		_, err := e.host.Version(ctx)
		if err == nil {
			return true
		}
		result.Reopen.LastError = err.Error()

		select {
		case <-ctx.Done():
			result.Reopen.LastError = ctx.Err().Error()
			return false
		case <-time.After(readyPollInterval):
		}
	}
	return false
}

// syncServicePlaylist makes the host service playlist mirror the plan
func (e *Engine) syncServicePlaylist(ctx context.Context, plan *models.Plan, matches map[string]models.MatchResult, dryRun bool) (bool, string, error) {
	name := e.cfg.Host.PlaylistName
	if name == "" {
		return false, "", nil
	}

	ref, err := e.host.FindPlaylist(ctx, name)
	if err != nil {
		return false, "", fmt.Errorf("finding playlist %q: %w", name, err)
	}
	current, err := e.host.CurrentRefs(ctx, ref.UUID)
	if err != nil {
		return false, "", fmt.Errorf("reading playlist %q: %w", name, err)
	}

	desired := playlist.DesiredRefs(plan, matches)
	if !playlist.Changed(current, desired) {
		return false, "", nil
	}

	diff := playlist.RenderDiff(current, desired)
	if dryRun {
		return true, diff, nil
	}
	if err := e.host.ReplacePlaylist(ctx, ref.UUID, desired); err != nil {
		return true, diff, fmt.Errorf("replacing playlist %q: %w", name, err)
	}
	return true, diff, nil
}
