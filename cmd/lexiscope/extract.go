package main

import (
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

func newExtractCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "extract [case-id...]",
		Short: "Warm the metadata cache",
		Long: `Resolves title, judges, date and summary for the listed cases (or the
whole corpus directory). Completion calls pass through the rate gateway, so a
large corpus takes capacity-per-window time to finish.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ids := args
			if len(ids) == 0 {
				if ids, err = a.texts.List(); err != nil {
					return err //nolint:wrapcheck // already wrapped by the provider
				}
			}

			var (
				mu     sync.Mutex
				counts = map[metadata.Status]int{}
				errs   int
			)
			g, gctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(concurrency, 1))
			for _, id := range ids {
				g.Go(func() error {
					rec, err := a.pipeline.Resolve(gctx, id, a.texts)
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						errs++
						a.logger.Warn("Extraction failed", zap.String("identity", id), zap.Error(err))
						return nil
					}
					counts[rec.Status()]++
					return nil
				})
			}
			_ = g.Wait()

			cmd.Printf("ready=%d failed=%d errors=%d\n",
				counts[metadata.StatusReady], counts[metadata.StatusFailed], errs)
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel extractions")
	return cmd
}
