package main

import (
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCorpusCmd() *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the corpus-wide passage index",
	}

	var reset bool
	ingestCmd := &cobra.Command{
		Use:   "ingest [case-id...]",
		Short: "Chunk, embed and index judgment texts",
		Long: `Splits every listed judgment (or the whole corpus directory) into
passages, embeds them and writes them to the corpus vector index.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := a.ingester(reset).Run(cmd.Context(), args)
			ids := make([]string, 0, len(report.Failed))
			for id := range report.Failed {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				a.logger.Warn("Ingest failed", zap.String("identity", id), zap.Error(report.Failed[id]))
			}
			cmd.Printf("documents=%d passages=%d errors=%d\n", report.Documents, report.Passages, len(report.Failed))
			return err //nolint:wrapcheck // already wrapped by the service
		},
	}
	ingestCmd.Flags().BoolVar(&reset, "reset", false, "drop the index and its passages first")

	corpusCmd.AddCommand(ingestCmd)
	return corpusCmd
}
