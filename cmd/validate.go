package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/quasar-thermo/internal/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the catalog database is reachable and carries data",
	Run:   runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	ok := true

	store, err := catalog.Open(context.Background(), catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "x catalog %s: %v\n", catalogPath, err)
		os.Exit(1)
	}
	defer store.Close()
	fmt.Fprintf(os.Stderr, "+ catalog %s opened\n", catalogPath)

	formulas, err := store.Formulas(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "x list formulas: %v\n", err)
		ok = false
	} else if len(formulas) == 0 {
		fmt.Fprintln(os.Stderr, "x catalog carries no rows; run `seed` first")
		ok = false
	} else {
		fmt.Fprintf(os.Stderr, "+ %d distinct formulas\n", len(formulas))
	}

	if !ok {
		os.Exit(1)
	}
}
