package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/quasar-thermo/internal/catalog"
	"github.com/papapumpkin/quasar-thermo/internal/config"
	"github.com/papapumpkin/quasar-thermo/internal/retry"
	"github.com/papapumpkin/quasar-thermo/internal/telemetry"
	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

// runtime bundles the collaborators every calc subcommand needs, built once
// from the persistent flags and closed by the caller's defer.
type runtime struct {
	cfg     thermo.CoreConfig
	store   *catalog.Store
	query   thermo.CatalogQuery
	emitter *telemetry.Emitter
	sink    thermo.LogSink
	vcache  *thermo.VirtualRowCache
}

// newRuntime opens the catalog database and loads config/telemetry from the
// persistent flags shared by every calc subcommand.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	catalogPath, _ := cmd.Flags().GetString("catalog")
	store, err := catalog.Open(context.Background(), catalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", catalogPath, err)
	}

	query := retry.WrapQuery(store.Query(), retry.DefaultBackoff())

	var emitter *telemetry.Emitter
	if telemetryPath, _ := cmd.Flags().GetString("telemetry"); telemetryPath != "" {
		emitter, err = telemetry.NewEmitter(telemetryPath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("open telemetry sink %s: %w", telemetryPath, err)
		}
	}

	var sink thermo.LogSink = thermo.NoopSink{}
	if emitter != nil {
		sink = emitter
	}

	vcache := thermo.NewVirtualRowCache(cfg.MaxVirtualRecords)

	return &runtime{cfg: cfg, store: store, query: query, emitter: emitter, sink: sink, vcache: vcache}, nil
}

// Close releases the runtime's collaborators. Safe to call with a nil
// emitter.
func (r *runtime) Close() error {
	if r.emitter != nil {
		r.emitter.Close()
	}
	return r.store.Close()
}

// fetchCatalogRows fetches every catalog row for formula as-is, the shape
// the Temperature Range Resolver consumes.
func (r *runtime) fetchCatalogRows(formula string) ([]thermo.CatalogRow, error) {
	rows, err := r.query(formula)
	if err != nil {
		r.sink.LogError("catalog fetch failed", err, map[string]any{"formula": formula})
		return nil, fmt.Errorf("fetch rows for %s: %w", formula, err)
	}
	return rows, nil
}

// fetchRows fetches every catalog row for formula and converts it to
// []thermo.Row, the shape every other core entry point consumes.
func (r *runtime) fetchRows(formula string) ([]thermo.Row, error) {
	rows, err := r.fetchCatalogRows(formula)
	if err != nil {
		return nil, err
	}
	out := make([]thermo.Row, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out, nil
}
