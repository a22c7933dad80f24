package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"sublet/internal/seed"
	"sublet/internal/store"
)

func statsCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print moderation aggregates for a seed as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = cfg.SeedFile
			}
			data, err := seed.Load(from)
			if err != nil {
				return err
			}
			st, err := store.New(data)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st.Stats())
		},
	}

	cmd.Flags().StringVar(&from, "seed", "", "seed file (default: SEED_FILE or the demo data)")
	return cmd
}
