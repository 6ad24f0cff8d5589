package heuristic

import (
	"context"
	"fmt"
	"strings"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/corpus"
)

// NameEnglishText is the name of the English prose check.
const NameEnglishText = "english_text"

// EnglishText returns a scorer that checks the TITLE and DESCRIPTION of every
// record are written in English. Records whose language could not be
// detected are left out of the ratio.
func EnglishText(detector api.LanguageDetector, opts Options) api.Scorer {
	return &englishTextScorer{detector: detector, opts: opts}
}

type englishTextScorer struct {
	detector api.LanguageDetector
	opts     Options
}

func (s *englishTextScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	opts := s.opts.withDefaults()
	result := api.Score{
		Name:     NameEnglishText,
		Scale:    opts.Scale,
		Metadata: make(map[string]any),
	}

	if s.detector == nil {
		result.Error = api.ErrNoLanguageDetector
		return result
	}

	records := parser(opts).Records(in.Corpus)
	if !anyHeaders(records) {
		result.Error = api.ErrNoRecords
		result.Explanation = "no records to score"
		return result
	}
	var failures []Failure
	var lastErr error
	judged := 0
	for _, rec := range records {
		title, _ := rec.Single(corpus.Title)
		desc, _ := rec.Single(corpus.Description)
		text := strings.TrimSpace(title + "\n" + desc)
		if text == "" {
			judged++
			continue
		}

		lang, err := s.detector.DetectLanguage(ctx, text)
		if err != nil {
			lastErr = err
			continue
		}
		judged++
		if !isEnglish(lang) {
			failures = append(failures, Failure{Index: rec.Index, Reason: "language " + lang})
		}
	}

	result.Metadata["detection_errors"] = len(records) - judged
	if judged == 0 {
		result.Error = fmt.Errorf("language detection failed for every record: %w", lastErr)
		return result
	}

	passed := judged - len(failures)
	result.Score = float64(passed) / float64(judged) * opts.Scale
	result.Explanation = explain("in English", passed, judged, failures)
	result.Metadata["passed"] = passed
	result.Metadata["failed"] = len(failures)
	result.Metadata["total"] = judged
	return result
}

func isEnglish(lang string) bool {
	lang = strings.ToLower(lang)
	return lang == "en" || strings.HasPrefix(lang, "en-")
}
