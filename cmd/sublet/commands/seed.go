package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sublet/internal/bootstrap"
	"sublet/internal/seed"
	"sublet/internal/store"
)

func seedCmd() *cobra.Command {
	var (
		from string
		fake int
		out  string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write seed data as YAML",
		Long:  "Loads the demo data (or --from), appends --fake generated listings and writes the result to --out or stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := seed.Load(from)
			if err != nil {
				return err
			}
			data := bootstrap.Extend(base, fake, time.Now())

			if err := writeSeed(cmd.OutOrStdout(), out, data); err != nil {
				return err
			}

			counts := data.Counts()
			slog.Info("seed written",
				slog.String("out", out),
				slog.Int("users", counts["users"]),
				slog.Int("listings", counts["listings"]))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "base seed file (default: built-in demo data)")
	cmd.Flags().IntVar(&fake, "fake", 0, "number of generated listings to append")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

// writeSeed encodes data to path, or to stdout when path is empty.
func writeSeed(stdout io.Writer, path string, data store.Seed) error {
	if path == "" {
		return seed.Encode(stdout, data)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := seed.Encode(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
