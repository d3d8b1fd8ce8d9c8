package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"plansync/internal/backup"
	"plansync/internal/config"
	"plansync/internal/host"
	"plansync/internal/models"
	"plansync/internal/normalize"
	"plansync/internal/orchestrator"
	"plansync/internal/plansource"
	"plansync/internal/process"
	"plansync/internal/protool"
)

var (
	cfgPath string
	verbose bool
	jsonOut bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "plansync",
	Short: "Keep the presentation host in step with the service plan",
	Long: `plansync pulls the upcoming service plan from the remote planning
service, matches its items against the local presentation library, rewrites
the matched documents through the companion script toolchain, and reconciles
the service playlist so the room is ready before rehearsal starts.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
	SilenceUsage: true,
}

func main() {
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "configs/config.yaml", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output JSON")
}

func registerCommands() {
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(playlistCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(doctorCmd())
}

// clients bundles everything a command needs to talk to the outside world
type clients struct {
	cfg   *config.Config
	plans *plansource.Client
	host  *host.Client
	tool  *protool.Runner
	app   *process.Controller
}

func buildClients(ctx context.Context) (*clients, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	plans, err := plansource.NewClient(ctx, &cfg.PlanSource)
	if err != nil {
		return nil, err
	}
	return &clients{
		cfg:   cfg,
		plans: plans,
		host:  host.NewClient(&cfg.Host),
		tool:  protool.NewRunner(cfg.Tool.Command, cfg.Tool.ScriptsDir, cfg.Tool.Timeout(), logger),
		app:   process.NewController(cfg.Host.AppName, cfg.Sync.TerminateGrace(), logger),
	}, nil
}

func (c *clients) engine(backups orchestrator.BackupStore) *orchestrator.Engine {
	return orchestrator.New(c.cfg, c.plans, c.host, c.tool, c.app, backups, logger)
}

// signalContext cancels the returned context on SIGINT or SIGTERM so an
// interrupted run still reopens the application and records its summary
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, cancelling run", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func syncCmd() *cobra.Command {
	var (
		dryRun     bool
		noReopen   bool
		doPlaylist bool
		categories []string
		items      []string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rewrite matched documents and reconcile the playlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			cl, err := buildClients(ctx)
			if err != nil {
				return err
			}
			cats, err := parseCategories(categories)
			if err != nil {
				return err
			}

			runID := uuid.NewString()[:8]
			var backups orchestrator.BackupStore
			if !dryRun {
				mgr, err := backup.NewManager(cl.cfg.Sync.BackupDir, runID, logger)
				if err != nil {
					return err
				}
				backups = mgr
				logger.Info("backing up originals", "dir", mgr.RunDir())
			}

			opts := orchestrator.Options{
				RunID:          runID,
				DryRun:         dryRun,
				Categories:     cats,
				ItemIDs:        items,
				Reopen:         !noReopen && !cl.cfg.Sync.NoReopen,
				UpdatePlaylist: doPlaylist || cl.cfg.Sync.UpdatePlaylist,
			}

			result, runErr := cl.engine(backups).Run(ctx, opts)
			if result != nil {
				if err := printRunResult(result, dryRun); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing anything")
	cmd.Flags().BoolVar(&noReopen, "no-reopen", false, "leave the application closed afterwards")
	cmd.Flags().BoolVar(&doPlaylist, "playlist", false, "also reconcile the service playlist")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "limit to categories (song, message, transitions, videos, pre-service, post-service)")
	cmd.Flags().StringSliceVar(&items, "items", nil, "limit to specific plan item ids")
	return cmd
}

func printRunResult(result *models.RunResult, dryRun bool) error {
	if jsonOut {
		return printJSON(result)
	}

	fmt.Printf("📋 %s (%s)\n", result.PlanTitle, result.PlanDate)
	if dryRun {
		fmt.Println("🔎 Dry run: nothing was written")
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Outcome", "Count"})
	tw.AppendRow(table.Row{"updated", result.Tally.Updated})
	tw.AppendRow(table.Row{"skipped (no match)", result.Tally.Skipped})
	tw.AppendRow(table.Row{"no description", result.Tally.NoDesc})
	tw.AppendRow(table.Row{"missing path", result.Tally.MissingPath})
	tw.AppendRow(table.Row{"write errors", result.Tally.WriteErrors})
	tw.AppendFooter(table.Row{"processed", result.Tally.Processed()})
	tw.Render()

	if result.Reopen.Attempted {
		if result.Reopen.Ready {
			fmt.Printf("✅ Application answered after %s\n", result.Reopen.Elapsed.Round(time.Millisecond))
		} else {
			fmt.Printf("⚠️ Application did not answer in time: %s\n", result.Reopen.LastError)
		}
	}
	if verbose {
		for _, ev := range result.Events {
			note := ev.Note
			if note != "" {
				note = "(" + note + ")"
			}
			fmt.Printf("   %s  %-18s %s\n", ev.At.Format("15:04:05.000"), ev.To, note)
		}
	}
	return nil
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the upcoming plan and how it matches the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cl, err := buildClients(ctx)
			if err != nil {
				return err
			}
			plan, err := cl.plans.NextPlan(ctx)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(plan)
			}

			matches, err := cl.engine(nil).Matches(ctx, plan)
			if err != nil {
				logger.Warn("library matches unavailable", "error", err)
			}

			fmt.Printf("📋 %s (%s)\n", plan.Title, plan.Date)
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"#", "Title", "Category", "Length", "Library"})
			matched := 0
			for _, item := range plan.Items {
				if item.IsHeader {
					tw.AppendRow(table.Row{item.Order, item.Title, "header", "", ""})
					continue
				}
				col := ""
				if m, ok := matches[item.Title]; ok {
					col = matchColumn(m)
					if m.Matched {
						matched++
					}
				}
				tw.AppendRow(table.Row{item.Order, item.Title, string(item.Category), formatLength(item.LengthSeconds), col})
			}
			tw.Render()
			if matches != nil {
				fmt.Printf("%d of %d titles matched\n", matched, len(matches))
			}
			return nil
		},
	}
	return cmd
}

func matchColumn(m models.MatchResult) string {
	if m.Matched {
		return "✓ " + shortID(m.UUID)
	}
	if len(m.Candidates) > 0 {
		return fmt.Sprintf("? %d candidates", len(m.Candidates))
	}
	return "no match"
}

func playlistCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Reconcile the service playlist with the plan order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cl, err := buildClients(ctx)
			if err != nil {
				return err
			}
			changed, diff, err := cl.engine(nil).SyncPlaylist(ctx, dryRun)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Println("✅ Playlist already matches the plan")
				return nil
			}
			fmt.Print(diff)
			if dryRun {
				fmt.Println("🔎 Dry run: playlist left untouched")
			} else {
				fmt.Println("✅ Playlist updated")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the reorder without writing it")
	return cmd
}

func indexCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "List presentation documents under the library root",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cl, err := buildClients(ctx)
			if err != nil {
				return err
			}
			if root == "" {
				root = cl.cfg.Host.LibraryRoot
			}
			entries, err := cl.tool.IndexLibrary(ctx, root)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(entries)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"UUID", "Title", "Path"})
			for _, entry := range entries {
				tw.AppendRow(table.Row{shortID(entry.UUID), entry.Title, entry.Path})
			}
			tw.Render()
			fmt.Printf("%d documents\n", len(entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "directory to scan (defaults to the configured library root)")
	return cmd
}

// doctorReport tracks check outcomes for the final verdict
type doctorReport struct {
	passed int
	failed int
}

func (r *doctorReport) ok(name, detail string) {
	r.passed++
	fmt.Printf("✅ %-16s %s\n", name, detail)
}

func (r *doctorReport) fail(name string, err error) {
	r.failed++
	fmt.Printf("❌ %-16s %v\n", name, err)
}

func doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, connectivity, and the toolchain",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rep := &doctorReport{}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				rep.fail("config", err)
				return fmt.Errorf("cannot continue without configuration")
			}
			rep.ok("config", cfgPath)

			checkPlanSource(ctx, rep, cfg)
			hostClient := host.NewClient(&cfg.Host)
			if checkHostAPI(ctx, rep, hostClient) {
				checkHostEntities(ctx, rep, cfg, hostClient)
			}
			checkToolchain(rep, cfg)
			checkDirectories(rep, cfg)
			checkApplication(ctx, rep, cfg)

			fmt.Println()
			if rep.failed > 0 {
				return fmt.Errorf("%d of %d checks failed", rep.failed, rep.passed+rep.failed)
			}
			fmt.Printf("🩺 All %d checks passed\n", rep.passed)
			return nil
		},
	}
	return cmd
}

func checkPlanSource(ctx context.Context, rep *doctorReport, cfg *config.Config) {
	plans, err := plansource.NewClient(ctx, &cfg.PlanSource)
	if err != nil {
		rep.fail("plan source", err)
		return
	}
	plan, err := plans.NextPlan(ctx)
	switch {
	case plansource.IsNotFound(err):
		rep.ok("plan source", "reachable, no upcoming plan")
	case err != nil:
		rep.fail("plan source", err)
	default:
		rep.ok("plan source", fmt.Sprintf("next plan %q on %s", plan.Title, plan.Date))
	}
}

func checkHostAPI(ctx context.Context, rep *doctorReport, hostClient *host.Client) bool {
	version, err := hostClient.Version(ctx)
	if err != nil {
		rep.fail("host api", err)
		return false
	}
	rep.ok("host api", version)
	return true
}

func checkHostEntities(ctx context.Context, rep *doctorReport, cfg *config.Config, hostClient *host.Client) {
	libs, err := hostClient.Libraries(ctx)
	if err != nil {
		rep.fail("library", err)
	} else if target := findNamed(libs, cfg.Host.LibraryName); target == nil {
		rep.fail("library", fmt.Errorf("%q not found on host", cfg.Host.LibraryName))
	} else if items, err := hostClient.LibraryItems(ctx, target.UUID); err != nil {
		rep.fail("library", err)
	} else {
		rep.ok("library", fmt.Sprintf("%s, %d documents", target.Name, len(items)))
	}

	if cfg.Host.TimerName != "" {
		timers, err := hostClient.Timers(ctx)
		switch {
		case err != nil:
			rep.fail("countdown timer", err)
		case timerNamed(timers, cfg.Host.TimerName):
			rep.ok("countdown timer", cfg.Host.TimerName)
		default:
			rep.ok("countdown timer", fmt.Sprintf("%q missing, created on first sync", cfg.Host.TimerName))
		}
	}

	if cfg.Host.ClearProp != "" {
		props, err := hostClient.Props(ctx)
		switch {
		case err != nil:
			rep.fail("clear prop", err)
		case findNamed(props, cfg.Host.ClearProp) != nil:
			rep.ok("clear prop", cfg.Host.ClearProp)
		default:
			rep.fail("clear prop", fmt.Errorf("prop %q not found", cfg.Host.ClearProp))
		}
	}

	if cfg.Host.StageLayout != "" {
		layouts, err := hostClient.StageLayouts(ctx)
		switch {
		case err != nil:
			rep.fail("stage layout", err)
		case findNamed(layouts, cfg.Host.StageLayout) != nil:
			rep.ok("stage layout", cfg.Host.StageLayout)
		default:
			rep.fail("stage layout", fmt.Errorf("layout %q not found", cfg.Host.StageLayout))
		}
	}

	if cfg.Host.PlaylistName != "" {
		ref, err := hostClient.FindPlaylist(ctx, cfg.Host.PlaylistName)
		if err != nil {
			rep.fail("service playlist", err)
		} else {
			rep.ok("service playlist", ref.Name)
		}
	}
}

func checkToolchain(rep *doctorReport, cfg *config.Config) {
	if _, err := exec.LookPath(cfg.Tool.Command); err != nil {
		rep.fail("toolchain", err)
		return
	}
	var missing []string
	for _, script := range protool.Scripts() {
		if _, err := os.Stat(filepath.Join(cfg.Tool.ScriptsDir, script)); err != nil {
			missing = append(missing, script)
		}
	}
	if len(missing) > 0 {
		rep.fail("toolchain", fmt.Errorf("missing under %s: %s", cfg.Tool.ScriptsDir, strings.Join(missing, ", ")))
		return
	}
	rep.ok("toolchain", fmt.Sprintf("%s, %d scripts", cfg.Tool.Command, len(protool.Scripts())))
}

func checkDirectories(rep *doctorReport, cfg *config.Config) {
	if info, err := os.Stat(cfg.Host.LibraryRoot); err != nil {
		rep.fail("library root", err)
	} else if !info.IsDir() {
		rep.fail("library root", fmt.Errorf("%s is not a directory", cfg.Host.LibraryRoot))
	} else {
		rep.ok("library root", cfg.Host.LibraryRoot)
	}

	if cfg.Sync.LowerThirdsDir != "" {
		if info, err := os.Stat(cfg.Sync.LowerThirdsDir); err != nil || !info.IsDir() {
			rep.fail("lower thirds", fmt.Errorf("%s is not a readable directory", cfg.Sync.LowerThirdsDir))
		} else {
			rep.ok("lower thirds", cfg.Sync.LowerThirdsDir)
		}
	}

	if cfg.Sync.BackupDir != "" {
		if info, err := os.Stat(cfg.Sync.BackupDir); err == nil && info.IsDir() {
			rep.ok("backups", cfg.Sync.BackupDir)
		} else {
			rep.ok("backups", fmt.Sprintf("%s missing, created on first sync", cfg.Sync.BackupDir))
		}
	}
}

func checkApplication(ctx context.Context, rep *doctorReport, cfg *config.Config) {
	app := process.NewController(cfg.Host.AppName, cfg.Sync.TerminateGrace(), logger)
	if !app.Supported() {
		rep.ok("application", "lifecycle control unsupported on this platform")
		return
	}
	running, err := app.IsRunning(ctx)
	switch {
	case err != nil:
		rep.fail("application", err)
	case running:
		rep.ok("application", cfg.Host.AppName+" is running")
	default:
		rep.ok("application", cfg.Host.AppName+" is not running")
	}
}

func findNamed(refs []host.NamedRef, name string) *host.NamedRef {
	if name == "" && len(refs) > 0 {
		return &refs[0]
	}
	want := normalize.Title(name)
	for i := range refs {
		if normalize.Title(refs[i].Name) == want {
			return &refs[i]
		}
	}
	return nil
}

func timerNamed(timers []host.TimerDescriptor, name string) bool {
	want := normalize.Title(name)
	for _, t := range timers {
		if normalize.Title(t.Name) == want {
			return true
		}
	}
	return false
}

func parseCategories(names []string) ([]models.Category, error) {
	known := map[string]models.Category{
		"song":        models.CategorySong,
		"message":     models.CategoryMessage,
		"transitions": models.CategoryTransitions,
		"videos":      models.CategoryVideos,
		"preservice":  models.CategoryPreService,
		"postservice": models.CategoryPostService,
	}
	squash := strings.NewReplacer(" ", "", "-", "", "_", "")
	var out []models.Category
	for _, name := range names {
		cat, ok := known[squash.Replace(strings.ToLower(name))]
		if !ok {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		out = append(out, cat)
	}
	return out, nil
}

func formatLength(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return (time.Duration(seconds) * time.Second).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
