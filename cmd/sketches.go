package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"digispark-uploader/internal/progress"
	"digispark-uploader/internal/sketch"

	"github.com/spf13/cobra"
)

// sketchesCmd refreshes the sketch bundle and prints what it contains.
var sketchesCmd = &cobra.Command{
	Use:   "sketches",
	Short: "Fetch the sketch bundle and list its sketches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := sketch.NewBundle(cfg, newFetcher(), progress.NewBar(os.Stderr, progress.Items))
		if err := b.Fetch(cmd.Context()); err != nil {
			return err
		}
		sketches, err := sketch.List(b.Dir(), cfg.Sketches.Extension)
		if err != nil {
			return err
		}
		for i, s := range sketches {
			rel, err := filepath.Rel(b.Dir(), s)
			if err != nil {
				rel = s
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, rel)
		}
		return nil
	},
}
