// Command lexiscope serves the legal judgment search and chat API and runs
// the offline corpus jobs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/config"
	logpkg "github.com/kailas-cloud/lexiscope/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lexiscope",
		Short:         "Semantic search and chat over court judgments",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newServeCmd(),
		newIndexCmd(),
		newCorpusCmd(),
		newExtractCmd(),
		newVersionCmd(),
	)
	return root
}

// bootstrap loads config for ENV, builds the logger and wires the app.
func bootstrap(ctx context.Context) (*app, func(), error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Startup failed", zap.Error(err))
		_ = logger.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		a.Close()
		_ = logger.Sync()
	}
	return a, cleanup, nil
}
