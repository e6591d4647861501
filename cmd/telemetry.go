package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/quasar-thermo/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry FILE",
	Short: "View JSONL telemetry events recorded by a calc run",
	Long: "Reads and formats a JSONL telemetry file written via --telemetry.\n" +
		"With --follow (-f), watches the file for new events (like tail -f).",
	Args: cobra.ExactArgs(1),
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	path := args[0]
	follow, _ := cmd.Flags().GetBool("follow")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

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
	return tailFollow(cmd.Context(), cmd.OutOrStdout(), f, path)
}

// tailFollow watches the file for new data using fsnotify and prints new
// events. It respects context cancellation for clean shutdown.
func tailFollow(ctx context.Context, w io.Writer, f *os.File, path string) error {
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
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			readNewLines(reader, w)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watcher error: %w", watchErr)
		}
	}
}

// readNewLines drains all available lines from the reader and prints them.
func readNewLines(reader *bufio.Reader, w io.Writer) {
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			printEvent(w, line)
		}
		if err != nil {
			return
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	ts := evt.Timestamp.Format(time.TimeOnly)
	parts := []string{fmt.Sprintf("[%s]", ts), evt.Kind}

	if evt.RunID != "" {
		parts = append(parts, fmt.Sprintf("run=%s", evt.RunID))
	}
	if evt.Message != "" {
		parts = append(parts, evt.Message)
	}
	if evt.Error != "" {
		parts = append(parts, fmt.Sprintf("error=%q", evt.Error))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
