package main

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIndexCmd() *cobra.Command {
	index := &cobra.Command{
		Use:   "index",
		Short: "Manage per-document retrieval indexes",
	}

	var all bool
	build := &cobra.Command{
		Use:   "build [case-id...]",
		Short: "Build missing per-document indexes",
		Long: `Builds the chat retrieval index of every listed case that does not
have one yet. With --all every text in the corpus directory is considered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("pass case ids or --all")
			}

			a, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ids := args
			if all {
				if ids, err = a.texts.List(); err != nil {
					return err //nolint:wrapcheck // already wrapped by the provider
				}
			}
			cmd.Printf("Building indexes for %d cases...\n", len(ids))

			report, err := a.indexes.BuildAll(cmd.Context(), ids, a.texts, a.cfg.Index.BuildConcurrency)
			failed := make([]string, 0, len(report.Failed))
			for id := range report.Failed {
				failed = append(failed, id)
			}
			sort.Strings(failed)
			for _, id := range failed {
				a.logger.Warn("Index build failed", zap.String("identity", id), zap.Error(report.Failed[id]))
			}
			cmd.Printf("built=%d skipped=%d errors=%d\n", report.Built, report.Skipped, len(report.Failed))
			return err
		},
	}
	build.Flags().BoolVar(&all, "all", false, "build indexes for every text in the corpus")

	index.AddCommand(build)
	return index
}
