package c7score

import "github.com/MaTriXy/c7score/api"

// Sentinel errors found in Score.Error and returned by constructors. Use
// errors.Is to test for them.
var (
	ErrNoRecords           = api.ErrNoRecords
	ErrNoLLM               = api.ErrNoLLM
	ErrLLMGenerationFailed = api.ErrLLMGenerationFailed
	ErrEmptyResponse       = api.ErrEmptyResponse
	ErrSchemaViolation     = api.ErrSchemaViolation
	ErrPromptTooLong       = api.ErrPromptTooLong
	ErrTokenCount          = api.ErrTokenCount
	ErrLinterFailed        = api.ErrLinterFailed
	ErrUnsupportedLanguage = api.ErrUnsupportedLanguage
	ErrInvalidCriteria     = api.ErrInvalidCriteria
	ErrInvalidWeights      = api.ErrInvalidWeights
	ErrUnknownComponent    = api.ErrUnknownComponent
	ErrInvalidScale        = api.ErrInvalidScale
	ErrNoScores            = api.ErrNoScores
	ErrNoLanguageDetector  = api.ErrNoLanguageDetector
)
