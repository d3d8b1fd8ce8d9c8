package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"plansync/internal/models"
)

const resultName = "run_result.json"

func main() {
	var (
		dir      = flag.String("dir", "backups", "Backup directory holding run folders")
		run      = flag.String("run", "", "Run folder to inspect")
		detailed = flag.Bool("detailed", false, "Show categories and the event log")
	)
	flag.Parse()

	if *run != "" {
		showRunDetails(filepath.Join(*dir, *run), *detailed)
		return
	}
	showAllRuns(*dir)
}

func loadResult(runDir string) (*models.RunResult, error) {
	data, err := os.ReadFile(filepath.Join(runDir, resultName))
	if err != nil {
		return nil, err
	}
	var result models.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// showAllRuns displays a summary of every recorded run, newest first
func showAllRuns(dir string) {
	fmt.Printf("📊 Sync Run History\n")
	fmt.Printf("================================\n\n")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No backup directory found.")
			return
		}
		fmt.Printf("Error reading backup directory: %v\n", err)
		return
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	// run folders are date-prefixed, so lexical order is chronological
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	total := 0
	for _, name := range names {
		result, err := loadResult(filepath.Join(dir, name))
		if err != nil {
			continue
		}

		total++
		fmt.Printf("📁 %s\n", name)
		fmt.Printf("   Plan: %s (%s)\n", result.PlanTitle, result.PlanDate)
		fmt.Printf("   Updated: %d of %d processed\n", result.Tally.Updated, result.Tally.Processed())
		if result.Tally.WriteErrors > 0 {
			fmt.Printf("   ⚠️ Write errors: %d\n", result.Tally.WriteErrors)
		}
		fmt.Printf("   Finished: %s\n", result.FinishedAt.Format("2006-01-02 15:04"))
		fmt.Printf("\n")
	}

	if total == 0 {
		fmt.Println("No recorded runs found.")
	} else {
		fmt.Printf("Total recorded runs: %d\n", total)
	}
}

// showRunDetails shows everything recorded about a single run
func showRunDetails(runDir string, detailed bool) {
	result, err := loadResult(runDir)
	if err != nil {
		fmt.Printf("Error reading run result: %v\n", err)
		return
	}

	fmt.Printf("📋 Run %s\n", result.RunID)
	fmt.Printf("========================================\n\n")

	fmt.Printf("📊 Plan\n")
	fmt.Printf("------------------\n")
	fmt.Printf("Title: %s\n", result.PlanTitle)
	fmt.Printf("Date: %s\n", result.PlanDate)
	fmt.Printf("Started: %s\n", result.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Finished: %s\n", result.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration: %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Second))

	fmt.Printf("\n📈 Outcome\n")
	fmt.Printf("------------------\n")
	fmt.Printf("Updated: %d\n", result.Tally.Updated)
	fmt.Printf("Skipped (no match): %d\n", result.Tally.Skipped)
	fmt.Printf("No description: %d\n", result.Tally.NoDesc)
	fmt.Printf("Missing path: %d\n", result.Tally.MissingPath)
	fmt.Printf("Write errors: %d\n", result.Tally.WriteErrors)
	if processed := result.Tally.Processed(); processed > 0 {
		fmt.Printf("Update rate: %.1f%%\n", float64(result.Tally.Updated)/float64(processed)*100)
	}

	if result.Reopen.Attempted {
		fmt.Printf("\n🔄 Reopen\n")
		fmt.Printf("------------------\n")
		if result.Reopen.Ready {
			fmt.Printf("Application answered after %s\n", result.Reopen.Elapsed.Round(time.Millisecond))
		} else {
			fmt.Printf("❌ Application never answered: %s\n", result.Reopen.LastError)
		}
	}

	if detailed && len(result.Categories) > 0 {
		ids := make([]string, 0, len(result.Categories))
		for id := range result.Categories {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		fmt.Printf("\n🏷 Categories (%d assets)\n", len(ids))
		fmt.Printf("------------------\n")
		for _, id := range ids {
			fmt.Printf("%-14s %s\n", result.Categories[id], id)
		}
	}

	if detailed && len(result.Events) > 0 {
		fmt.Printf("\n📅 Event Log (%d transitions)\n", len(result.Events))
		fmt.Printf("------------------\n")
		for _, ev := range result.Events {
			fmt.Printf("%s  %-18s %s\n", ev.At.Format("15:04:05.000"), ev.To, ev.Note)
		}
	}
}
