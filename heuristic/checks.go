package heuristic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MaTriXy/c7score/corpus"
)

var numberedItemRegex = regexp.MustCompile(`^\d+[.)]\s`)

func checkCompleteness(rec corpus.Record, opts Options) (bool, string) {
	for _, f := range []corpus.Field{corpus.Title, corpus.Description, corpus.Source} {
		v, ok := rec.Single(f)
		if !ok {
			return false, "missing " + string(f)
		}
		if v == "" {
			return false, "empty " + string(f)
		}
	}

	langs := rec.Repeated(corpus.Language)
	if len(langs) == 0 {
		return false, "missing LANGUAGE"
	}
	for _, l := range langs {
		if l == "" {
			return false, "empty LANGUAGE"
		}
	}

	codes := rec.Repeated(corpus.Code)
	if len(codes) == 0 {
		return false, "missing CODE"
	}
	for _, c := range codes {
		if corpus.StripFences(c) == "" {
			return false, "empty CODE"
		}
	}
	return true, ""
}

func checkCodeLength(rec corpus.Record, opts Options) (bool, string) {
	langs := rec.Repeated(corpus.Language)
	for i, code := range rec.Repeated(corpus.Code) {
		words := len(strings.Fields(codeBody(code, opts)))
		if words < opts.MinCodeWords {
			return false, fmt.Sprintf("code has %d words, want at least %d", words, opts.MinCodeWords)
		}

		if opts.MaxTrivialCodeWords < 0 || i >= len(langs) {
			continue
		}
		if isTrivialLanguage(langs[i], opts) && words >= opts.MaxTrivialCodeWords {
			return false, fmt.Sprintf("%s code has %d words, want fewer than %d", langs[i], words, opts.MaxTrivialCodeWords)
		}
	}
	return true, ""
}

func checkSingleCodeBlock(rec corpus.Record, opts Options) (bool, string) {
	langs, codes := rec.Count(corpus.Language), rec.Count(corpus.Code)
	if opts.Strict {
		langs = strings.Count(rec.Raw, "LANGUAGE:")
		codes = strings.Count(rec.Raw, "CODE:")
	}
	if langs > 1 || codes > 1 {
		return false, fmt.Sprintf("%d LANGUAGE and %d CODE headers", langs, codes)
	}
	return true, ""
}

func checkLanguageDescriptor(rec corpus.Record, opts Options) (bool, string) {
	for _, lang := range rec.Repeated(corpus.Language) {
		if lang == "" {
			continue
		}
		lower := strings.ToLower(lang)
		if strings.ContainsAny(lang, " \t") {
			return false, fmt.Sprintf("language %q is more than one word", lang)
		}
		if !opts.Strict && strings.Contains(lang, "-") {
			return false, fmt.Sprintf("language %q is hyphenated", lang)
		}
		for _, bad := range opts.InvalidLanguages {
			if lower == bad || (opts.Strict && strings.Contains(lower, bad)) {
				return false, fmt.Sprintf("language %q is not a programming language", lang)
			}
		}
	}
	return true, ""
}

func checkBareList(rec corpus.Record, opts Options) (bool, string) {
	for _, code := range rec.Repeated(corpus.Code) {
		body := corpus.StripFences(code)
		if opts.Strict {
			if containsAny(body, opts.ListGlyphs) || (strings.Contains(body, "1. ") && strings.Contains(body, "2. ")) {
				return false, "code is a list"
			}
			continue
		}

		lines := corpus.NonEmptyLines(body)
		items := 0
		for _, line := range lines {
			if isListItem(strings.TrimSpace(line), opts) {
				items++
			}
		}
		if items >= opts.ListMinItems && float64(items)/float64(len(lines)) > opts.ListLineRatio {
			return false, fmt.Sprintf("code is a list (%d of %d lines are items)", items, len(lines))
		}
	}
	return true, ""
}

func checkCitation(rec corpus.Record, opts Options) (bool, string) {
	for _, lang := range rec.Repeated(corpus.Language) {
		if matchesAny(lang, opts.CitationLanguages, opts.Strict) {
			return false, fmt.Sprintf("language %q is a citation format", lang)
		}
	}
	return true, ""
}

func checkLicense(rec corpus.Record, opts Options) (bool, string) {
	source, _ := rec.Single(corpus.Source)
	if containsAny(strings.ToLower(source), opts.LicenseKeywords) {
		return false, "source is license text"
	}
	return true, ""
}

func checkDirectoryTree(rec corpus.Record, opts Options) (bool, string) {
	if !titleMentions(rec, opts.DirectoryKeywords) {
		return true, ""
	}
	for _, code := range rec.Repeated(corpus.Code) {
		if containsAny(code, opts.TreeGlyphs) {
			return false, "code is a directory tree"
		}
	}
	return true, ""
}

func checkImportOnly(rec corpus.Record, opts Options) (bool, string) {
	if !titleMentions(rec, opts.ImportKeywords) {
		return true, ""
	}
	for _, code := range rec.Repeated(corpus.Code) {
		body := corpus.StripFences(code)
		if len(corpus.NonEmptyLines(body)) == 1 && !strings.Contains(body, "/") {
			return false, "code is a single import"
		}
	}
	return true, ""
}

func checkInstallOnly(rec corpus.Record, opts Options) (bool, string) {
	if !titleMentions(rec, opts.InstallKeywords) {
		return true, ""
	}
	for _, code := range rec.Repeated(corpus.Code) {
		if len(corpus.NonEmptyLines(corpus.StripFences(code))) == 1 {
			return false, "code is a single install command"
		}
	}
	return true, ""
}

// codeBody returns the text whose words are counted. Strict mode only drops
// the backticks, so the info string of a fence counts as a word.
func codeBody(code string, opts Options) string {
	if opts.Strict {
		return strings.ReplaceAll(code, "```", "")
	}
	return corpus.StripFences(code)
}

func isTrivialLanguage(lang string, opts Options) bool {
	return matchesAny(lang, opts.TrivialLanguages, opts.Strict)
}

func isListItem(line string, opts Options) bool {
	if numberedItemRegex.MatchString(line) {
		return true
	}
	for _, g := range opts.ListGlyphs {
		if strings.HasPrefix(line, g) {
			return true
		}
	}
	return false
}

func titleMentions(rec corpus.Record, keywords []string) bool {
	title, _ := rec.Single(corpus.Title)
	return containsAny(strings.ToLower(title), keywords)
}

// matchesAny compares a field value against a list case-insensitively, by
// equality or, when substr is set, by containment.
func matchesAny(value string, list []string, substr bool) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return false
	}
	for _, item := range list {
		if v == item || (substr && strings.Contains(v, item)) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
