package heuristic

import "strings"

// DefaultScale is the maximum heuristic score unless Options.Scale says otherwise.
const DefaultScale = 10.0

// Options configures the heuristic suite. Zero values fall back to the
// defaults returned by DefaultOptions, so Options{Scale: 100} is valid.
type Options struct {
	// Scale is the maximum score, usually 10 or 100
	Scale float64
	// Strict reproduces legacy edge cases: upper-case-only headers, raw
	// substring counting of headers, fence markers counted as words and
	// substring matching of language deny lists
	Strict bool

	// MinCodeWords is the fewest words a code body may have
	MinCodeWords int
	// MaxTrivialCodeWords bounds code written in a trivial language; negative disables the bound
	MaxTrivialCodeWords int
	// TrivialLanguages are languages whose snippets are usually command transcripts
	TrivialLanguages []string

	// InvalidLanguages are LANGUAGE values that indicate a misused field
	InvalidLanguages []string
	// CitationLanguages are LANGUAGE values of citation formats
	CitationLanguages []string
	// LicenseKeywords mark a SOURCE as license text
	LicenseKeywords []string

	// ListGlyphs are bullet characters that start an unordered list item
	ListGlyphs []string
	// ListLineRatio is the share of non-empty lines above which a code body is a list
	ListLineRatio float64
	// ListMinItems is the fewest list items a body needs to count as a list
	ListMinItems int

	// DirectoryKeywords in a title suggest a directory tree dump
	DirectoryKeywords []string
	// TreeGlyphs are the box-drawing sequences of a directory tree
	TreeGlyphs []string
	// ImportKeywords in a title suggest an import-only snippet
	ImportKeywords []string
	// InstallKeywords in a title suggest an install-only snippet
	InstallKeywords []string
}

// DefaultOptions returns the options used when a field is left empty.
func DefaultOptions() Options {
	return Options{
		Scale:               DefaultScale,
		MinCodeWords:        5,
		MaxTrivialCodeWords: 35,
		TrivialLanguages:    []string{"apidoc", "terminal", "shell", "bash", "sh", "zsh", "text", "plaintext", "txt"},
		InvalidLanguages:    []string{"none", "console"},
		CitationLanguages:   []string{"bibtex", "biblatex"},
		LicenseKeywords:     []string{"license"},
		ListGlyphs:          []string{"◯", "•", "☐", "□"},
		ListLineRatio:       0.5,
		ListMinItems:        2,
		DirectoryKeywords:   []string{"directory", "structure", "workflow"},
		TreeGlyphs:          []string{"├─", "└─", "|-"},
		ImportKeywords:      []string{"import", "importing"},
		InstallKeywords:     []string{"install", "initialize", "initializing"},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.MinCodeWords <= 0 {
		o.MinCodeWords = d.MinCodeWords
	}
	if o.MaxTrivialCodeWords == 0 {
		o.MaxTrivialCodeWords = d.MaxTrivialCodeWords
	}
	if o.TrivialLanguages == nil {
		o.TrivialLanguages = d.TrivialLanguages
	}
	if o.InvalidLanguages == nil {
		o.InvalidLanguages = d.InvalidLanguages
	}
	if o.CitationLanguages == nil {
		o.CitationLanguages = d.CitationLanguages
	}
	if o.LicenseKeywords == nil {
		o.LicenseKeywords = d.LicenseKeywords
	}
	if o.ListGlyphs == nil {
		o.ListGlyphs = d.ListGlyphs
	}
	if o.ListLineRatio <= 0 {
		o.ListLineRatio = d.ListLineRatio
	}
	if o.ListMinItems <= 0 {
		o.ListMinItems = d.ListMinItems
	}
	if o.DirectoryKeywords == nil {
		o.DirectoryKeywords = d.DirectoryKeywords
	}
	if o.TreeGlyphs == nil {
		o.TreeGlyphs = d.TreeGlyphs
	}
	if o.ImportKeywords == nil {
		o.ImportKeywords = d.ImportKeywords
	}
	if o.InstallKeywords == nil {
		o.InstallKeywords = d.InstallKeywords
	}

	// field values are lowercased before matching, so the lists are too
	o.TrivialLanguages = lowerAll(o.TrivialLanguages)
	o.InvalidLanguages = lowerAll(o.InvalidLanguages)
	o.CitationLanguages = lowerAll(o.CitationLanguages)
	o.LicenseKeywords = lowerAll(o.LicenseKeywords)
	o.DirectoryKeywords = lowerAll(o.DirectoryKeywords)
	o.ImportKeywords = lowerAll(o.ImportKeywords)
	o.InstallKeywords = lowerAll(o.InstallKeywords)
	return o
}

func lowerAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
