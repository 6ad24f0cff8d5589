package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MaTriXy/c7score"
	"github.com/MaTriXy/c7score/internal/metrics"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		flags       runFlags
		concurrency int
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "batch <corpus-file>...",
		Short: "Score several corpora in parallel",
		Long: `Score independent corpora with bounded concurrency. Each file is one
library, named after the file. With --metrics-file the run is also written
as a Prometheus textfile for the node_exporter textfile collector.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.runContext(cmd.Context())
			defer cancel()

			inputs := make([]c7score.Input, 0, len(args))
			for _, path := range args {
				in, err := loadInput(path, "", "")
				if err != nil {
					return err
				}
				inputs = append(inputs, in)
			}

			m := metrics.New()
			ev, cleanup, err := buildEvaluator(ctx, a.cfg, flags, a.logger, c7score.WithObserver(m))
			if err != nil {
				return err
			}
			defer cleanup()

			reports, err := ev.EvaluateAll(ctx, inputs, concurrency)
			if err != nil {
				return err
			}
			if err := a.emit(ctx, cmd.OutOrStdout(), flags, reports...); err != nil {
				return err
			}

			if metricsFile == "" {
				metricsFile = a.cfg.Metrics.TextfilePath
			}
			if metricsFile != "" {
				if err := m.WriteTextfile(metricsFile); err != nil {
					return err
				}
				a.logger.Info("metrics written", zap.String("path", metricsFile))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Corpora evaluated at once (0 for unbounded)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	addRunFlags(cmd, &flags)
	return cmd
}
