package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MaTriXy/c7score/internal/store"
	"github.com/MaTriXy/c7score/report"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		flags     runFlags
		reference string
		library   string
	)

	cmd := &cobra.Command{
		Use:   "evaluate <corpus-file>",
		Short: "Score one snippet corpus",
		Long: `Score one corpus of snippets separated by lines of forty hyphens.

A reference file holds the "required information" the corpus should
cover; with it the LLM grades coverage instead of uniqueness.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.runContext(cmd.Context())
			defer cancel()

			in, err := loadInput(args[0], reference, library)
			if err != nil {
				return err
			}
			ev, cleanup, err := buildEvaluator(ctx, a.cfg, flags, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			rep := ev.Evaluate(ctx, in)
			return a.emit(ctx, cmd.OutOrStdout(), flags, rep)
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "File with the information the corpus should cover")
	cmd.Flags().StringVar(&library, "library", "", "Library name in the report (default: corpus file name)")
	addRunFlags(cmd, &flags)
	return cmd
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().BoolVar(&flags.noLLM, "no-llm", false, "Skip the LLM rubric and language detection")
	cmd.Flags().BoolVar(&flags.syntax, "syntax", false, "Lint code blocks with external linters")
	cmd.Flags().BoolVar(&flags.groups, "groups", false, "Add the grouped heuristics to the report")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print JSON instead of text")
	cmd.Flags().BoolVar(&flags.save, "save", false, "Store the reports in the history database")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Merge the reports into this JSON file")
}

// emit prints, merges and stores finished reports as the flags ask.
func (a *app) emit(ctx context.Context, w io.Writer, flags runFlags, reports ...report.Report) error {
	if flags.json {
		if err := report.WriteJSON(w, reports...); err != nil {
			return err
		}
	} else {
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := report.WriteHuman(w, r); err != nil {
				return err
			}
		}
	}

	if flags.output != "" {
		for _, r := range reports {
			if err := report.MergeJSONFile(flags.output, r); err != nil {
				return err
			}
		}
	}

	if flags.save {
		s, err := store.Open(a.cfg.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		for _, r := range reports {
			id, err := s.Save(ctx, r)
			if err != nil {
				return err
			}
			a.logger.Debug("report saved", zap.String("library", r.Library), zap.Int64("id", id))
		}
	}
	return nil
}
