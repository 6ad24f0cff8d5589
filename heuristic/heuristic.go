// Package heuristic scores a snippet corpus with deterministic, offline checks.
//
// Every heuristic inspects records one at a time and reports the share of
// records that pass, scaled to Options.Scale. The functions are pure: the
// same records and options always give the same score.
package heuristic

import (
	"context"
	"fmt"
	"strings"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/corpus"
)

// Names of the individual heuristics and their groups.
const (
	NameCompleteness       = "completeness"
	NameCodeLength         = "code_length"
	NameSingleCodeBlock    = "single_code_block"
	NameLanguageDescriptor = "language_descriptor"
	NameBareList           = "not_bare_list"
	NameCitation           = "not_citation"
	NameLicense            = "not_license"
	NameDirectoryTree      = "not_directory_tree"
	NameImportOnly         = "not_import_only"
	NameInstallOnly        = "not_install_only"

	NameFormatting      = "formatting"
	NameProjectMetadata = "project_metadata"
	NameInitialization  = "initialization"
)

// maxListedFailures caps how many failing records an explanation names.
const maxListedFailures = 5

// Check decides whether a single record passes. A failing check returns a
// short reason used in explanations.
type Check func(rec corpus.Record, opts Options) (ok bool, reason string)

// Heuristic is a named per-record check.
type Heuristic struct {
	Name string
	// Label describes a passing record, e.g. "complete"
	Label string
	Check Check
}

// Failure identifies a record that failed a heuristic.
type Failure struct {
	Index  int
	Reason string
}

var (
	// Completeness requires TITLE, DESCRIPTION and SOURCE plus at least one LANGUAGE/CODE pair, all non-empty.
	Completeness = Heuristic{Name: NameCompleteness, Label: "complete", Check: checkCompleteness}
	// CodeLength rejects code bodies that are too short, or too long for trivial languages.
	CodeLength = Heuristic{Name: NameCodeLength, Label: "of adequate code length", Check: checkCodeLength}
	// SingleCodeBlock rejects records with more than one LANGUAGE or CODE header.
	SingleCodeBlock = Heuristic{Name: NameSingleCodeBlock, Label: "single code block", Check: checkSingleCodeBlock}
	// LanguageDescriptor rejects multi-word, hyphenated or placeholder LANGUAGE values.
	LanguageDescriptor = Heuristic{Name: NameLanguageDescriptor, Label: "with a valid language", Check: checkLanguageDescriptor}
	// BareList rejects code bodies that are only a numbered or bulleted list.
	BareList = Heuristic{Name: NameBareList, Label: "not a bare list", Check: checkBareList}
	// Citation rejects snippets written in a citation format.
	Citation = Heuristic{Name: NameCitation, Label: "not a citation", Check: checkCitation}
	// License rejects snippets sourced from license text.
	License = Heuristic{Name: NameLicense, Label: "not license text", Check: checkLicense}
	// DirectoryTree rejects snippets that only dump a directory structure.
	DirectoryTree = Heuristic{Name: NameDirectoryTree, Label: "not a directory tree", Check: checkDirectoryTree}
	// ImportOnly rejects snippets that only show an import statement.
	ImportOnly = Heuristic{Name: NameImportOnly, Label: "not import-only", Check: checkImportOnly}
	// InstallOnly rejects snippets that only show an install command.
	InstallOnly = Heuristic{Name: NameInstallOnly, Label: "not install-only", Check: checkInstallOnly}
)

// Suite is every individual heuristic in report order.
var Suite = []Heuristic{
	Completeness,
	CodeLength,
	SingleCodeBlock,
	LanguageDescriptor,
	BareList,
	Citation,
	License,
	DirectoryTree,
	ImportOnly,
	InstallOnly,
}

var (
	// Formatting passes records that are complete, well sized, correctly labelled and not bare lists.
	Formatting = Group(NameFormatting, "well formatted", Completeness, CodeLength, LanguageDescriptor, BareList)
	// ProjectMetadata passes records that are not citations, license text or directory trees.
	ProjectMetadata = Group(NameProjectMetadata, "free of project metadata", Citation, License, DirectoryTree)
	// Initialization passes records that are not import-only or install-only.
	Initialization = Group(NameInitialization, "more than setup", ImportOnly, InstallOnly)
)

// Groups lists the composite heuristics.
var Groups = []Heuristic{Formatting, ProjectMetadata, Initialization}

// Group combines heuristics into one that passes a record only when every
// member passes it.
func Group(name, label string, members ...Heuristic) Heuristic {
	return Heuristic{
		Name:  name,
		Label: label,
		Check: func(rec corpus.Record, opts Options) (bool, string) {
			for _, m := range members {
				if ok, reason := m.Check(rec, opts); !ok {
					return false, m.Name + ": " + reason
				}
			}
			return true, ""
		},
	}
}

// Evaluate applies the heuristic to every record and returns the share that
// passed on the configured scale. A record list with no header anywhere,
// including an empty one, yields a zero score with api.ErrNoRecords.
func (h Heuristic) Evaluate(records []corpus.Record, opts Options) api.Score {
	opts = opts.withDefaults()
	result := api.Score{
		Name:     h.Name,
		Scale:    opts.Scale,
		Metadata: make(map[string]any),
	}

	if !anyHeaders(records) {
		result.Error = api.ErrNoRecords
		result.Explanation = "no records to score"
		if len(records) > 0 {
			result.Explanation = fmt.Sprintf("no snippet headers found in %d records", len(records))
		}
		return result
	}

	var failures []Failure
	for _, rec := range records {
		if ok, reason := h.Check(rec, opts); !ok {
			failures = append(failures, Failure{Index: rec.Index, Reason: reason})
		}
	}

	total := len(records)
	passed := total - len(failures)
	result.Score = float64(passed) / float64(total) * opts.Scale
	result.Explanation = explain(h.Label, passed, total, failures)
	result.Metadata["passed"] = passed
	result.Metadata["failed"] = len(failures)
	result.Metadata["total"] = total
	if len(failures) > 0 {
		result.Metadata["failures"] = failures
	}
	return result
}

// EvaluateCorpus splits and parses the corpus, then evaluates it.
func (h Heuristic) EvaluateCorpus(text string, opts Options) api.Score {
	return h.Evaluate(parser(opts).Records(text), opts)
}

// Scorer adapts the heuristic to api.Scorer.
func (h Heuristic) Scorer(opts Options) api.Scorer {
	return &heuristicScorer{h: h, opts: opts}
}

type heuristicScorer struct {
	h    Heuristic
	opts Options
}

func (s *heuristicScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	return s.h.EvaluateCorpus(in.Corpus, s.opts)
}

// EvaluateAll runs every heuristic of the suite over the records.
func EvaluateAll(records []corpus.Record, opts Options) []api.Score {
	scores := make([]api.Score, 0, len(Suite))
	for _, h := range Suite {
		scores = append(scores, h.Evaluate(records, opts))
	}
	return scores
}

// EvaluateGroups runs the composite heuristics over the records.
func EvaluateGroups(records []corpus.Record, opts Options) []api.Score {
	scores := make([]api.Score, 0, len(Groups))
	for _, h := range Groups {
		scores = append(scores, h.Evaluate(records, opts))
	}
	return scores
}

// Lookup returns the individual or composite heuristic with the given name.
func Lookup(name string) (Heuristic, bool) {
	for _, h := range Suite {
		if h.Name == name {
			return h, true
		}
	}
	for _, h := range Groups {
		if h.Name == name {
			return h, true
		}
	}
	return Heuristic{}, false
}

// anyHeaders reports whether at least one record is a snippet. An empty
// corpus or plain text yields only header-less records.
func anyHeaders(records []corpus.Record) bool {
	for _, rec := range records {
		if rec.HasHeaders() {
			return true
		}
	}
	return false
}

// Parse splits the corpus into records using the parsing rules of opts.
func Parse(text string, opts Options) []corpus.Record {
	return parser(opts).Records(text)
}

func parser(opts Options) corpus.Parser {
	return corpus.Parser{CaseSensitive: opts.Strict}
}

func explain(label string, passed, total int, failures []Failure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d snippets %s", passed, total, label)
	if len(failures) == 0 {
		return b.String()
	}
	b.WriteString("; failing:")
	for i, f := range failures {
		if i == maxListedFailures {
			fmt.Fprintf(&b, " and %d more", len(failures)-maxListedFailures)
			break
		}
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " #%d (%s)", f.Index+1, f.Reason)
	}
	return b.String()
}
