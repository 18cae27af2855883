package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/verdant-cli/verdant/internal/config"
	"github.com/verdant-cli/verdant/internal/gitrepo"
	"github.com/verdant-cli/verdant/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "View JSONL telemetry events for a run",
	Long: `Reads and formats the JSONL telemetry file for the current or specified run.

Without --run, discovers the most recent telemetry file.
With --follow (-f), watches the file for new events (like tail -f).`,
	RunE: runTelemetryView,
}

func init() {
	telemetryCmd.Flags().String("run", "", "run ID to view (default: most recent)")
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetryView(cmd *cobra.Command, _ []string) error {
	runID, _ := cmd.Flags().GetString("run")
	follow, _ := cmd.Flags().GetBool("follow")

	path, err := resolveTelemetryPath(cmd.Context(), runID)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	// Print all existing events.
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		printEvent(cmd.OutOrStdout(), line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		return nil
	}

	return followFile(cmd.OutOrStdout(), f, path)
}

// followFile keeps printing events appended to the file until the watcher is
// closed or errors out.
func followFile(w io.Writer, f *os.File, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				printNewLines(w, reader)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watch %s: %w", path, err)
		}
	}
}

// printNewLines drains whatever complete and partial lines have been appended
// since the last write event.
func printNewLines(w io.Writer, r *bufio.Reader) {
	for {
		line, err := r.ReadString('\n')
		if s := strings.TrimSpace(line); s != "" {
			printEvent(w, s)
		}
		if err != nil {
			return
		}
	}
}

// printEvent renders one JSONL line as a single readable row. Lines that do
// not decode are echoed raw so corruption stays visible.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", evt.Timestamp.Format(time.TimeOnly), evt.Kind)
	if evt.RunID != "" {
		fmt.Fprintf(&b, " run=%s", evt.RunID)
	}
	if evt.Date != "" {
		fmt.Fprintf(&b, " date=%s", evt.Date)
	}

	switch data := evt.Data.(type) {
	case nil:
	case map[string]any:
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, data[k])
		}
	default:
		raw, _ := json.Marshal(data)
		fmt.Fprintf(&b, " %s", raw)
	}

	fmt.Fprintln(w, b.String())
}

// resolveTelemetryPath finds the JSONL file for the given run, or discovers
// the most recent one if runID is empty.
func resolveTelemetryPath(ctx context.Context, runID string) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	backend, err := gitrepo.New(ctx, cfg.RepoDir)
	if err != nil {
		return "", err
	}
	controlDir, err := backend.ControlDir(ctx)
	if err != nil {
		return "", err
	}
	dir := telemetryDir(controlDir)

	if runID != "" {
		path := filepath.Join(dir, runID+".jsonl")
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("telemetry: no file for run %q: %w", runID, err)
		}
		return path, nil
	}

	// Discover the most recent telemetry file.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("telemetry: cannot read %s: %w", dir, err)
	}

	var jsonlFiles []os.DirEntry
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			jsonlFiles = append(jsonlFiles, e)
		}
	}
	if len(jsonlFiles) == 0 {
		return "", fmt.Errorf("telemetry: no JSONL files in %s", dir)
	}

	// Sort by modification time, most recent last.
	sort.Slice(jsonlFiles, func(i, j int) bool {
		fi, _ := jsonlFiles[i].Info()
		fj, _ := jsonlFiles[j].Info()
		return fi.ModTime().Before(fj.ModTime())
	})

	return filepath.Join(dir, jsonlFiles[len(jsonlFiles)-1].Name()), nil
}
