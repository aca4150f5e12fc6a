package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"task-lifecycle.com/task-lifecycle/internal/seed"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load templates and domain memberships from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}

			f, err := seed.Load(file)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := f.Apply(cmd.Context(), a.pipeline.Templates, a.pipeline.Memberships)
			if err != nil {
				return err
			}

			a.log.Info().
				Int("templates", res.Templates).
				Int("memberships", res.Memberships).
				Msg("seed applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to YAML seed file")
	return cmd
}

func init() {
	rootCmd.AddCommand(seedCmd())
}
