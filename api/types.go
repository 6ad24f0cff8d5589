package api

import "context"

// LLMGenerator is an interface for generating structured output using an LLM
// This interface must be implemented by library consumers
// A Gemini implementation is provided in the gemini subpackage
type LLMGenerator interface {
	// StructuredGenerate generates structured data based on the provided prompt and JSON schema
	// schema must be a valid JSON schema (map[string]interface{})
	// Returns the generated data as a map[string]interface{} or an error
	StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error)
}

// TextGenerator produces free-form text. It backs the legacy rubric mode,
// which parses the response for prefix and suffix markers instead of relying
// on a schema.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TokenCounter measures a prompt in the LLM service's own tokenization.
type TokenCounter interface {
	CountTokens(ctx context.Context, prompt string) (int, error)
}

// LanguageDetector reports the natural language of a piece of text as a
// BCP-47 code such as "en" or "zh-Hant".
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// Score represents the result of an evaluation
type Score struct {
	// Name identifies the scorer that produced this result
	Name string
	// Score is a value between 0 and Scale, where Scale is the best possible score
	Score float64
	// Scale is the native maximum of Score (10 for heuristics, 100 for the rubric)
	Scale float64
	// Explanation is a human readable diagnostic for the score
	Explanation string
	// Metadata contains additional information about the scoring process
	Metadata map[string]any
	// Error contains any error that occurred during scoring
	Error error
}

// Normalized returns the score mapped onto [0, scale].
func (s Score) Normalized(scale float64) float64 {
	if s.Scale <= 0 {
		return 0
	}
	return s.Score / s.Scale * scale
}

// ScoreInputs carries inputs for scoring a snippet corpus.
//
// Fields usage conventions:
// - Corpus:    the delimiter-separated snippet text (required)
// - Reference: the "required information" text relevance is judged against (optional)
type ScoreInputs struct {
	Corpus    string
	Reference string
}

// Scorer evaluates the quality of a snippet corpus
type Scorer interface {
	// Score evaluates the corpus and returns a score
	// in: container for corpus/reference depending on scorer needs
	Score(ctx context.Context, in ScoreInputs) Score
}
