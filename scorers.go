package c7score

import (
	"time"

	language "cloud.google.com/go/language/apiv1"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/gemini"
	"github.com/MaTriXy/c7score/heuristic"
)

// EvaluatorOptions configures Evaluator creation
type EvaluatorOptions struct {
	llm      api.LLMGenerator
	text     api.TextGenerator
	counter  api.TokenCounter
	detector api.LanguageDetector
	logger   *zap.Logger
	weights  Weights
	scale    float64
	heur     HeuristicOptions
	groups   bool
	rubric   RubricOptions
	syntax   *SyntaxOptions
	observer Observer
	now      func() time.Time
}

// WithLLMGenerator enables the structured rubric scorer
func WithLLMGenerator(llm api.LLMGenerator) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.llm = llm
	}
}

// WithTextGenerator enables the legacy free-text rubric scorer. It is used
// only when no LLMGenerator is set.
func WithTextGenerator(gen api.TextGenerator) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.text = gen
	}
}

// WithTokenCounter sets the counter that measures rubric prompts
func WithTokenCounter(counter api.TokenCounter) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.counter = counter
	}
}

// WithLanguageDetector enables the English text check
func WithLanguageDetector(detector api.LanguageDetector) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.detector = detector
	}
}

// WithLogger sets the logger handed to every component
func WithLogger(logger *zap.Logger) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.logger = logger
	}
}

// WithWeights replaces the default component weights
func WithWeights(weights Weights) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.weights = weights
	}
}

// WithScale sets the maximum overall score, usually 10 or 100
func WithScale(scale float64) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.scale = scale
	}
}

// WithHeuristicOptions sets the allow and deny lists of the heuristics
func WithHeuristicOptions(h HeuristicOptions) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.heur = h
	}
}

// WithGroupedHeuristics adds the formatting, project metadata and
// initialization composites to every report
func WithGroupedHeuristics() func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.groups = true
	}
}

// WithRubricOptions sets criteria and the prompt ceiling of the rubric
func WithRubricOptions(r RubricOptions) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.rubric = r
	}
}

// WithSyntax enables linting of code blocks
func WithSyntax(s SyntaxOptions) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.syntax = &s
	}
}

// WithObserver receives every finished report
func WithObserver(o Observer) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.observer = o
	}
}

// WithClock sets the source of report timestamps
func WithClock(now func() time.Time) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.now = now
	}
}

// GeminiOptions configures the Gemini backed components of an Evaluator
type GeminiOptions struct {
	genaiClient *genai.Client
	modelName   string
	langClient  *language.Client
	sampling    *gemini.Sampling
	legacy      bool
}

// WithGenaiClient sets the Gemini client for the rubric and token counting
func WithGenaiClient(client *genai.Client) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.genaiClient = client
	}
}

// WithModelName sets the model name for the rubric
func WithModelName(modelName string) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.modelName = modelName
	}
}

// WithLanguageClient sets the Google Cloud Language client for the English text check
func WithLanguageClient(langClient *language.Client) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.langClient = langClient
	}
}

// WithSampling overrides gemini.DefaultSampling
func WithSampling(s gemini.Sampling) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.sampling = &s
	}
}

// WithLegacyRubric asks Gemini for the free-text rubric answer instead of JSON
func WithLegacyRubric() func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.legacy = true
	}
}

// WithGemini wires Gemini and Cloud Natural Language clients into the evaluator.
// Example model: "publishers/google/models/gemini-2.5-pro".
func WithGemini(opts ...func(*GeminiOptions)) func(*EvaluatorOptions) {
	options := &GeminiOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return func(ev *EvaluatorOptions) {
		// Only add the rubric if genaiClient and modelName are provided
		if options.genaiClient != nil && options.modelName != "" {
			gen := gemini.NewGenerator(options.genaiClient, options.modelName)
			if options.sampling != nil {
				gen = gen.WithSampling(*options.sampling)
			}
			if options.legacy {
				ev.text = gen
			} else {
				ev.llm = gen
			}
			ev.counter = gemini.NewTokenCounter(options.genaiClient, options.modelName)
		}

		// Only add the language detector if langClient is provided
		if options.langClient != nil {
			ev.detector = gemini.NewLanguageDetector(options.langClient)
		}
	}
}

// Heuristic exposes convenient constructors for heuristic scorers.
type Heuristic struct {
	opts HeuristicOptions
}

// NewHeuristic creates a new Heuristic.
func NewHeuristic(opts HeuristicOptions) *Heuristic {
	return &Heuristic{opts: opts}
}

// Suite returns a scorer for each of the ten heuristics.
func (h *Heuristic) Suite() []api.Scorer {
	scorers := make([]api.Scorer, 0, len(heuristic.Suite))
	for _, hh := range heuristic.Suite {
		scorers = append(scorers, hh.Scorer(h.opts))
	}
	return scorers
}

// Groups returns a scorer for each composite heuristic.
func (h *Heuristic) Groups() []api.Scorer {
	scorers := make([]api.Scorer, 0, len(heuristic.Groups))
	for _, hh := range heuristic.Groups {
		scorers = append(scorers, hh.Scorer(h.opts))
	}
	return scorers
}

// Scorer returns the named heuristic, individual or composite.
func (h *Heuristic) Scorer(name string) (api.Scorer, bool) {
	hh, ok := heuristic.Lookup(name)
	if !ok {
		return nil, false
	}
	return hh.Scorer(h.opts), true
}

// EnglishText returns a scorer that checks titles and descriptions are English.
func (h *Heuristic) EnglishText(detector api.LanguageDetector) api.Scorer {
	return heuristic.EnglishText(detector, h.opts)
}
