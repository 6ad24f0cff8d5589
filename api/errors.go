package api

import "errors"

var (
	// ErrNoRecords is returned when a corpus yields no records to score
	ErrNoRecords = errors.New("corpus contains no records")
	// ErrNoLLM is returned when an LLM-backed scorer has no generator
	ErrNoLLM = errors.New("LLM generator is required")
	// ErrLLMGenerationFailed is returned when LLM generation fails
	ErrLLMGenerationFailed = errors.New("LLM generation failed")
	// ErrEmptyResponse is returned by generators when the service answers with no content
	ErrEmptyResponse = errors.New("LLM returned an empty response")
	// ErrSchemaViolation is returned when a structured response does not match the requested schema
	ErrSchemaViolation = errors.New("LLM response does not match schema")
	// ErrPromptTooLong is returned when a prompt exceeds the token ceiling and the call is skipped
	ErrPromptTooLong = errors.New("prompt exceeds token ceiling")
	// ErrTokenCount is returned when the prompt could not be measured
	ErrTokenCount = errors.New("failed to count prompt tokens")
	// ErrLinterFailed is returned when an external linter is missing or exits abnormally
	ErrLinterFailed = errors.New("linter failed")
	// ErrUnsupportedLanguage is returned when no linter handles a code language
	ErrUnsupportedLanguage = errors.New("no linter for language")
	// ErrInvalidCriteria is returned when a rubric has too few or too many criteria, or non-positive weights
	ErrInvalidCriteria = errors.New("invalid rubric criteria")
	// ErrInvalidWeights is returned when aggregation weights are negative or all zero
	ErrInvalidWeights = errors.New("invalid weights")
	// ErrUnknownComponent is returned when a weight names a component that does not exist
	ErrUnknownComponent = errors.New("unknown component")
	// ErrInvalidScale is returned when an output scale is not positive
	ErrInvalidScale = errors.New("scale must be positive")
	// ErrNoScores is returned when no weighted component produced a usable score
	ErrNoScores = errors.New("no component scores to aggregate")
	// ErrNoLanguageDetector is returned when the English text check has no detector
	ErrNoLanguageDetector = errors.New("language detector is required")
)
