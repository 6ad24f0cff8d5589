package llmjudge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/MaTriXy/c7score/api"
)

const (
	// NameRubric is the Score.Name of the rubric scorer
	NameRubric = "llm_rubric"
	// RubricScale is the native scale of the structured rubric
	RubricScale = 100.0
	// DefaultMaxPromptTokens is the prompt ceiling of the Gemini 2.5 context window
	DefaultMaxPromptTokens = 1048576
)

// SnippetRubricOptions configures the SnippetRubric scorer
type SnippetRubricOptions struct {
	// Criteria is the rubric used without reference text. Defaults to DefaultCriteria
	Criteria []Criterion
	// ReferenceCriteria is the rubric used when reference text is supplied.
	// Defaults to DefaultReferenceCriteria
	ReferenceCriteria []Criterion
	// MaxPromptTokens is the hard ceiling; longer prompts are never sent.
	// Defaults to DefaultMaxPromptTokens
	MaxPromptTokens int
	// TokenCounter measures prompts. When nil the prompt is estimated with EstimateTokens
	TokenCounter api.TokenCounter
	// Logger receives token counts, skips and retries. Defaults to a no-op logger
	Logger *zap.Logger
}

// SnippetRubric returns a scorer that asks an LLM to grade the whole corpus
// against a weighted rubric in a single structured call.
// The final score is the weighted average of the per-criterion scores on a 0-100 scale.
func SnippetRubric(llm api.LLMGenerator, opts SnippetRubricOptions) api.Scorer {
	return &rubricScorer{
		opts:   opts.withDefaults(),
		llm:    llm,
		logger: loggerOrNop(opts.Logger),
	}
}

// LegacySnippetRubric returns a scorer that asks for a free-text answer
// starting with "&---" and ending with a "**Total Score**:" line. Each
// criterion is scored 0-10, so the native scale is 10 per criterion.
func LegacySnippetRubric(gen api.TextGenerator, opts SnippetRubricOptions) api.Scorer {
	return &rubricScorer{
		opts:   opts.withDefaults(),
		text:   gen,
		legacy: true,
		logger: loggerOrNop(opts.Logger),
	}
}

func (o SnippetRubricOptions) withDefaults() SnippetRubricOptions {
	if o.Criteria == nil {
		o.Criteria = DefaultCriteria()
	}
	if o.ReferenceCriteria == nil {
		o.ReferenceCriteria = DefaultReferenceCriteria()
	}
	if o.MaxPromptTokens <= 0 {
		o.MaxPromptTokens = DefaultMaxPromptTokens
	}
	return o
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

type rubricScorer struct {
	opts   SnippetRubricOptions
	llm    api.LLMGenerator
	text   api.TextGenerator
	legacy bool
	logger *zap.Logger
}

// rubricResult is a validated judge answer.
type rubricResult struct {
	scores      []int
	reported    float64
	explanation string
	raw         any
}

func (s *rubricScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	criteria := s.opts.Criteria
	if in.Reference != "" {
		criteria = s.opts.ReferenceCriteria
	}

	result := api.Score{
		Name:     NameRubric,
		Scale:    RubricScale,
		Metadata: make(map[string]any),
	}
	if s.legacy {
		result.Scale = legacyScale(criteria)
		result.Metadata["mode"] = "legacy"
	}

	if (s.legacy && s.text == nil) || (!s.legacy && s.llm == nil) {
		return s.returnError(&result, api.ErrNoLLM)
	}
	if strings.TrimSpace(in.Corpus) == "" {
		return s.returnError(&result, api.ErrNoRecords)
	}
	if err := validateCriteria(criteria); err != nil {
		return s.returnError(&result, err)
	}

	var prompt string
	if s.legacy {
		prompt = buildLegacyPrompt(in.Corpus, in.Reference, criteria)
	} else {
		prompt = buildPrompt(in.Corpus, in.Reference, criteria)
	}

	tokens, estimated, err := s.countTokens(ctx, prompt)
	if err != nil {
		return s.returnError(&result, fmt.Errorf("%w: %v", api.ErrTokenCount, err))
	}
	result.Metadata["prompt_tokens"] = tokens
	result.Metadata["tokens_estimated"] = estimated
	s.logger.Debug("rubric prompt measured",
		zap.Int("tokens", tokens),
		zap.Bool("estimated", estimated),
		zap.Int("ceiling", s.opts.MaxPromptTokens))

	if tokens > s.opts.MaxPromptTokens {
		s.logger.Warn("rubric prompt exceeds token ceiling, skipping LLM evaluation",
			zap.Int("tokens", tokens),
			zap.Int("ceiling", s.opts.MaxPromptTokens))
		result.Metadata["skipped"] = true
		result.Error = fmt.Errorf("%w: %d tokens, ceiling %d", api.ErrPromptTooLong, tokens, s.opts.MaxPromptTokens)
		result.Explanation = fmt.Sprintf("LLM evaluation skipped: prompt of %d tokens exceeds the ceiling of %d", tokens, s.opts.MaxPromptTokens)
		return result
	}

	var rr rubricResult
	if s.legacy {
		rr, err = s.generateLegacy(ctx, prompt, criteria, &result)
	} else {
		rr, err = s.generateStructured(ctx, prompt, criteria, &result)
	}
	if err != nil {
		s.logger.Warn("rubric evaluation failed", zap.Error(err))
		return s.returnError(&result, err)
	}

	result.Score = weightedAverage(criteria, rr.scores)
	if s.legacy {
		// criteria are equally weighted in free-text mode; the sum is the score
		result.Score = float64(sum(rr.scores))
	}
	result.Explanation = rr.explanation
	result.Metadata["breakdown"] = breakdown(criteria, rr.scores)
	result.Metadata["average"] = int(math.Round(result.Score))
	result.Metadata["reported_average"] = rr.reported
	result.Metadata["raw_response"] = rr.raw
	return result
}

func (s *rubricScorer) countTokens(ctx context.Context, prompt string) (int, bool, error) {
	if s.opts.TokenCounter == nil {
		return EstimateTokens(prompt), true, nil
	}
	n, err := s.opts.TokenCounter.CountTokens(ctx, prompt)
	return n, false, err
}

func (s *rubricScorer) generateStructured(ctx context.Context, prompt string, criteria []Criterion, result *api.Score) (rubricResult, error) {
	schema := rubricSchema(len(criteria))

	var resp map[string]interface{}
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		result.Metadata["attempts"] = attempt
		resp, err = s.llm.StructuredGenerate(ctx, prompt, schema)
		if !emptyResult(len(resp) == 0, err) || attempt == 2 {
			break
		}
		s.logger.Info("LLM returned an empty result, retrying once")
	}
	if err != nil {
		if errors.Is(err, api.ErrEmptyResponse) {
			return rubricResult{}, err
		}
		return rubricResult{}, fmt.Errorf("%w: %v", api.ErrLLMGenerationFailed, err)
	}
	if len(resp) == 0 {
		return rubricResult{}, api.ErrEmptyResponse
	}

	rr, err := parseStructured(resp, len(criteria))
	rr.raw = resp
	result.Metadata["raw_response"] = resp
	return rr, err
}

func (s *rubricScorer) generateLegacy(ctx context.Context, prompt string, criteria []Criterion, result *api.Score) (rubricResult, error) {
	var resp string
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		result.Metadata["attempts"] = attempt
		resp, err = s.text.Generate(ctx, prompt)
		if !emptyResult(strings.TrimSpace(resp) == "", err) || attempt == 2 {
			break
		}
		s.logger.Info("LLM returned an empty result, retrying once")
	}
	if err != nil {
		if errors.Is(err, api.ErrEmptyResponse) {
			return rubricResult{}, err
		}
		return rubricResult{}, fmt.Errorf("%w: %v", api.ErrLLMGenerationFailed, err)
	}
	if strings.TrimSpace(resp) == "" {
		return rubricResult{}, api.ErrEmptyResponse
	}

	rr, err := parseLegacy(resp, len(criteria))
	rr.raw = resp
	result.Metadata["raw_response"] = resp
	return rr, err
}

// emptyResult reports whether a call produced nothing and earns the one retry.
// Transport errors other than an empty response are not retried.
func emptyResult(empty bool, err error) bool {
	if err != nil {
		return errors.Is(err, api.ErrEmptyResponse)
	}
	return empty
}

// returnError is a helper function to set error metadata consistently
func (s *rubricScorer) returnError(result *api.Score, err error) api.Score {
	result.Error = err
	result.Score = 0
	result.Explanation = "LLM evaluation failed: " + err.Error()
	if _, ok := result.Metadata["raw_response"]; !ok {
		result.Metadata["raw_response"] = nil
	}
	return *result
}

func rubricSchema(n int) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"scores": map[string]interface{}{
				"type":        "array",
				"description": "One score per criterion, in the order the criteria are listed",
				"items": map[string]interface{}{
					"type":    "integer",
					"minimum": 0,
					"maximum": 100,
				},
				"minItems": n,
				"maxItems": n,
			},
			"average": map[string]interface{}{
				"type":        "integer",
				"description": "Weighted average of the scores",
			},
			"explanation": map[string]interface{}{
				"type":        "string",
				"description": "One or two sentences explaining the scores",
			},
		},
		"required": []string{"scores", "average", "explanation"},
	}
}

func parseStructured(resp map[string]interface{}, n int) (rubricResult, error) {
	var rr rubricResult

	rawScores, ok := resp["scores"].([]interface{})
	if !ok {
		return rr, fmt.Errorf("%w: scores missing or not an array", api.ErrSchemaViolation)
	}
	if len(rawScores) != n {
		return rr, fmt.Errorf("%w: got %d scores for %d criteria", api.ErrSchemaViolation, len(rawScores), n)
	}
	rr.scores = make([]int, n)
	for i, v := range rawScores {
		f, ok := toFloat(v)
		if !ok {
			return rr, fmt.Errorf("%w: score %d is not a number", api.ErrSchemaViolation, i+1)
		}
		if f < 0 || f > RubricScale {
			return rr, fmt.Errorf("%w: score %d out of range: %v", api.ErrSchemaViolation, i+1, f)
		}
		rr.scores[i] = int(math.Round(f))
	}

	avg, ok := toFloat(resp["average"])
	if !ok {
		return rr, fmt.Errorf("%w: average missing or not a number", api.ErrSchemaViolation)
	}
	rr.reported = avg
	explanation, ok := resp["explanation"].(string)
	if !ok {
		return rr, fmt.Errorf("%w: explanation missing", api.ErrSchemaViolation)
	}
	rr.explanation = strings.TrimSpace(explanation)
	return rr, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
