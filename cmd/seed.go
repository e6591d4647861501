package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/quasar-thermo/internal/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Load catalog rows from a JSON file into the catalog database",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var rows []catalog.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	catalogPath, _ := cmd.Flags().GetString("catalog")
	store, err := catalog.Open(context.Background(), catalogPath)
	if err != nil {
		return fmt.Errorf("open catalog %s: %w", catalogPath, err)
	}
	defer store.Close()

	if err := store.InsertRows(context.Background(), rows); err != nil {
		return fmt.Errorf("insert seed rows: %w", err)
	}

	fmt.Printf("inserted %d rows into %s\n", len(rows), catalogPath)
	return nil
}
