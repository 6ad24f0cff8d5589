package c7score

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MaTriXy/c7score/aggregate"
	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/heuristic"
	"github.com/MaTriXy/c7score/llmjudge"
	"github.com/MaTriXy/c7score/report"
	"github.com/MaTriXy/c7score/syntax"
)

// Input is one corpus to evaluate.
type Input struct {
	// Library names the corpus in reports, e.g. "/org/project"
	Library string
	// Corpus is the delimiter-separated snippet text
	Corpus string
	// Reference is optional "required information" text
	Reference string
}

// Observer receives every finished report, e.g. to export metrics.
// It must be safe for concurrent use when EvaluateAll runs in parallel.
type Observer interface {
	Observe(r report.Report, elapsed time.Duration)
}

// Evaluator runs the configured scorers over a corpus and aggregates them.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	scorers  []api.Scorer
	agg      *aggregate.Aggregator
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// NewEvaluator builds an Evaluator. The heuristic suite always runs; the
// rubric runs when an LLMGenerator or TextGenerator is set, the English
// check when a LanguageDetector is set and linting when WithSyntax is given.
// It fails on invalid weights or scale.
func NewEvaluator(opts ...func(*EvaluatorOptions)) (*Evaluator, error) {
	options := &EvaluatorOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}
	if options.weights == nil {
		options.weights = aggregate.DefaultWeights()
	}
	if options.now == nil {
		options.now = time.Now
	}

	agg, err := aggregate.New(options.weights, aggregate.Options{Scale: options.scale})
	if err != nil {
		return nil, err
	}

	var scorers []api.Scorer
	rubric := options.rubric
	if options.counter != nil {
		rubric.TokenCounter = options.counter
	}
	if rubric.Logger == nil {
		rubric.Logger = options.logger.Named("rubric")
	}
	switch {
	case options.llm != nil:
		scorers = append(scorers, llmjudge.SnippetRubric(options.llm, rubric))
	case options.text != nil:
		scorers = append(scorers, llmjudge.LegacySnippetRubric(options.text, rubric))
	}

	h := NewHeuristic(options.heur)
	scorers = append(scorers, h.Suite()...)
	if options.groups {
		scorers = append(scorers, h.Groups()...)
	}
	if options.detector != nil {
		scorers = append(scorers, h.EnglishText(options.detector))
	}
	if options.syntax != nil {
		s := *options.syntax
		if s.Logger == nil {
			s.Logger = options.logger.Named("syntax")
		}
		scorers = append(scorers, syntax.SyntaxLint(s))
	}

	return &Evaluator{
		scorers:  scorers,
		agg:      agg,
		observer: options.observer,
		logger:   options.logger,
		now:      options.now,
	}, nil
}

// Scale returns the maximum overall score.
func (e *Evaluator) Scale() float64 {
	return e.agg.Scale()
}

// Evaluate scores one corpus. It never fails: component errors are kept in
// the report and the overall score is computed from the components that
// succeeded.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) report.Report {
	start := e.now()
	logger := e.logger.With(zap.String("library", in.Library))

	si := api.ScoreInputs{Corpus: in.Corpus, Reference: in.Reference}
	scores := make([]api.Score, 0, len(e.scorers))
	for _, s := range e.scorers {
		score := s.Score(ctx, si)
		if score.Error != nil {
			logger.Warn("component failed", zap.String("component", score.Name), zap.Error(score.Error))
		} else {
			logger.Debug("component scored",
				zap.String("component", score.Name),
				zap.Float64("score", score.Score),
				zap.Float64("scale", score.Scale))
		}
		scores = append(scores, score)
	}

	res := e.agg.Aggregate(scores)
	rep := report.New(in.Library, scores, res, start)
	elapsed := e.now().Sub(start)
	logger.Info("corpus evaluated",
		zap.Float64("overall", rep.Overall),
		zap.Strings("excluded", rep.Excluded),
		zap.Duration("elapsed", elapsed))

	if e.observer != nil {
		e.observer.Observe(rep, elapsed)
	}
	return rep
}

// EvaluateAll scores independent corpora with at most concurrency running
// at once (unbounded when concurrency <= 0). Reports keep the order of
// inputs. The only error is the context's, when it ends before every
// corpus started.
func (e *Evaluator) EvaluateAll(ctx context.Context, inputs []Input, concurrency int) ([]report.Report, error) {
	reports := make([]report.Report, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = e.Evaluate(ctx, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Heuristics returns the heuristic scores of a corpus without the rubric
// or any external tool.
func Heuristics(corpusText string, opts HeuristicOptions) []api.Score {
	return heuristic.EvaluateAll(heuristic.Parse(corpusText, opts), opts)
}
