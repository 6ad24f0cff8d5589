// Package c7score scores documentation snippet corpora. It runs a suite of
// per-snippet heuristics, an LLM rubric and optional syntax linting, then
// combines them into one weighted score.
package c7score

import (
	"github.com/MaTriXy/c7score/aggregate"
	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/heuristic"
	"github.com/MaTriXy/c7score/llmjudge"
	"github.com/MaTriXy/c7score/report"
	"github.com/MaTriXy/c7score/syntax"
)

type Score = api.Score
type ScoreInputs = api.ScoreInputs
type Scorer = api.Scorer

type LLMGenerator = api.LLMGenerator
type TextGenerator = api.TextGenerator
type TokenCounter = api.TokenCounter
type LanguageDetector = api.LanguageDetector

type Report = report.Report
type Weights = aggregate.Weights

type HeuristicOptions = heuristic.Options
type RubricOptions = llmjudge.SnippetRubricOptions
type Criterion = llmjudge.Criterion
type SyntaxOptions = syntax.Options
