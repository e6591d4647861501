package thermo

import "fmt"

// LogSink is the logging capability the core consumes without depending on
// any particular logging library (§6 "Consumed"): the collaborator layer
// supplies an implementation backed by its own structured logger.
type LogSink interface {
	LogInfo(msg string, fields map[string]any)
	LogError(msg string, err error, fields map[string]any)
}

// NoopSink discards everything; it is the zero value a caller gets when it
// does not wire in a real LogSink.
type NoopSink struct{}

func (NoopSink) LogInfo(string, map[string]any)         {}
func (NoopSink) LogError(string, error, map[string]any) {}

// FormatTable renders stage metrics as a plain-text aligned table, the
// shape the CLI's `--explain` output prints (§4.4 "format_table").
func FormatTable(stages []StageMetric) string {
	out := fmt.Sprintf("%-28s %8s %8s %10s %10s\n", "stage", "in", "out", "reduction", "elapsed_us")
	for _, s := range stages {
		out += fmt.Sprintf("%-28s %8d %8d %9.1f%% %10d\n", s.Name, s.CountIn, s.CountOut, s.ReductionRate*100, s.ElapsedMicros)
	}
	return out
}

// CatalogQuery is the collaborator-supplied function the core uses to fetch
// all rows for a compound formula (§6 "Consumed"). It is the only way
// internal/thermo ever reaches outside of the slices a caller hands it
// directly; entry points that resolve compounds by formula rather than by
// pre-fetched row slice accept one of these instead of a storage handle.
type CatalogQuery func(formula string) ([]CatalogRow, error)
