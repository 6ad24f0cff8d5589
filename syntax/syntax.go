// Package syntax lints the code blocks of a corpus with external tools and
// scores them on a 0-10 scale per block.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/corpus"
)

// Name is the Score.Name of the syntax scorer.
const Name = "syntax"

// DefaultTimeout bounds a single linter run.
const DefaultTimeout = 30 * time.Second

// Options configures the SyntaxLint scorer
type Options struct {
	// Scale is the maximum score. Defaults to 10
	Scale float64
	// Timeout bounds each linter run. Defaults to DefaultTimeout
	Timeout time.Duration
	// Linters overrides DefaultLinters
	Linters []Linter
	// IgnoredLanguages overrides DefaultIgnoredLanguages
	IgnoredLanguages []string
	// Runner executes linters. Defaults to ExecRunner
	Runner Runner
	// TempDir holds the temporary source files. Defaults to os.TempDir
	TempDir string
	// Logger receives per-block failures. Defaults to a no-op logger
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = MaxBlockScore
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Linters == nil {
		o.Linters = DefaultLinters()
	}
	if o.IgnoredLanguages == nil {
		o.IgnoredLanguages = DefaultIgnoredLanguages()
	}
	if o.Runner == nil {
		o.Runner = ExecRunner{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// BlockResult is the outcome of linting one code block.
type BlockResult struct {
	Record   int     `json:"record"`
	Block    int     `json:"block"`
	Language string  `json:"language"`
	Linter   string  `json:"linter"`
	Score    float64 `json:"score"`
	Error    string  `json:"error,omitempty"`
}

// SyntaxLint returns a scorer that runs a linter over every code block whose
// language has one. The score is the mean block score; blocks whose linter
// failed are left out of the mean.
func SyntaxLint(opts Options) api.Scorer {
	return &syntaxScorer{opts: opts.withDefaults()}
}

type syntaxScorer struct {
	opts Options
}

func (s *syntaxScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	result := api.Score{
		Name:     Name,
		Scale:    s.opts.Scale,
		Metadata: make(map[string]any),
	}

	var blocks []BlockResult
	skipped := 0
	for _, rec := range corpus.Records(in.Corpus) {
		for i, pair := range rec.Pairs() {
			lang := normalizeLanguage(pair.Language)
			if s.ignored(lang) {
				skipped++
				continue
			}
			linter, ok := s.linterFor(lang)
			if !ok {
				skipped++
				continue
			}
			code := corpus.StripFences(pair.Code)
			if code == "" {
				skipped++
				continue
			}

			br := BlockResult{Record: rec.Index, Block: i, Language: lang, Linter: linter.Name}
			score, err := s.lint(ctx, linter, code)
			if err != nil {
				s.opts.Logger.Warn("linter failed",
					zap.String("linter", linter.Name),
					zap.Int("record", rec.Index),
					zap.Error(err))
				br.Error = err.Error()
			} else {
				br.Score = score
			}
			blocks = append(blocks, br)
		}
	}

	result.Metadata["blocks"] = blocks
	result.Metadata["skipped"] = skipped

	total, scored, failed := 0.0, 0, 0
	for _, b := range blocks {
		if b.Error != "" {
			failed++
			continue
		}
		total += b.Score
		scored++
	}
	result.Metadata["scored"] = scored
	result.Metadata["failed"] = failed

	if scored == 0 {
		if failed > 0 {
			result.Error = fmt.Errorf("%w: all %d lintable blocks failed", api.ErrLinterFailed, failed)
		} else {
			result.Error = fmt.Errorf("%w: no lintable code blocks", api.ErrUnsupportedLanguage)
		}
		result.Explanation = result.Error.Error()
		return result
	}

	mean := total / float64(scored)
	result.Score = mean / MaxBlockScore * s.opts.Scale
	result.Explanation = fmt.Sprintf("mean lint score %.1f/10 over %d code blocks", mean, scored)
	if failed > 0 {
		result.Explanation += fmt.Sprintf("; %d blocks could not be linted", failed)
	}
	return result
}

func (s *syntaxScorer) ignored(lang string) bool {
	for _, l := range s.opts.IgnoredLanguages {
		if lang == l {
			return true
		}
	}
	return false
}

func (s *syntaxScorer) linterFor(lang string) (Linter, bool) {
	for _, l := range s.opts.Linters {
		for _, candidate := range l.Languages {
			if candidate == lang {
				return l, true
			}
		}
	}
	return Linter{}, false
}

// lint writes the code to a temporary file and runs the linter on it.
func (s *syntaxScorer) lint(ctx context.Context, l Linter, code string) (float64, error) {
	f, err := os.CreateTemp(s.opts.TempDir, "c7score-*"+l.Ext)
	if err != nil {
		return 0, fmt.Errorf("%w: create temp file: %v", api.ErrLinterFailed, err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(code); err != nil {
		f.Close()
		return 0, fmt.Errorf("%w: write temp file: %v", api.ErrLinterFailed, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("%w: close temp file: %v", api.ErrLinterFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	res, err := s.opts.Runner.Run(ctx, l.Name, l.Args(path)...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: %s timed out after %s", api.ErrLinterFailed, l.Name, s.opts.Timeout)
		}
		return 0, fmt.Errorf("%w: %s: %v", api.ErrLinterFailed, l.Name, err)
	}
	if !l.OK(res.ExitCode) {
		return 0, fmt.Errorf("%w: %s exited with %d: %s", api.ErrLinterFailed, l.Name, res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	score, err := l.Score(res, len(strings.Split(code, "\n")))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", api.ErrLinterFailed, l.Name, err)
	}
	return score, nil
}
