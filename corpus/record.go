package corpus

import (
	"strings"
)

// Field names a header-tagged section of a record.
type Field string

const (
	Title       Field = "TITLE"
	Description Field = "DESCRIPTION"
	Language    Field = "LANGUAGE"
	Source      Field = "SOURCE"
	Code        Field = "CODE"
)

// Fields lists every known header in the order they usually appear.
var Fields = []Field{Title, Description, Source, Language, Code}

// repeatable reports whether a field may occur once per code example.
func (f Field) repeatable() bool {
	return f == Language || f == Code
}

// Pair is one code example of a record: a LANGUAGE value and the CODE segment
// that follows it. A side missing from the record is left empty.
type Pair struct {
	Language string
	Code     string
}

// Record is a parsed snippet record.
type Record struct {
	// Index is the position of the record in its corpus
	Index int
	// Raw is the unparsed record text
	Raw string

	singles  map[Field]string
	repeated map[Field][]string
	counts   map[Field]int
}

// Single returns the value of TITLE, DESCRIPTION or SOURCE and whether the
// header was present. Only the first occurrence of the header is used.
func (r Record) Single(f Field) (string, bool) {
	v, ok := r.singles[f]
	return v, ok
}

// Repeated returns every LANGUAGE or CODE segment in source order. The i-th
// LANGUAGE describes the i-th CODE.
func (r Record) Repeated(f Field) []string {
	return r.repeated[f]
}

// Count returns how many header lines of the field the record contains.
func (r Record) Count(f Field) int {
	return r.counts[f]
}

// Has reports whether the record contains at least one header of the field.
func (r Record) Has(f Field) bool {
	return r.counts[f] > 0
}

// HasHeaders reports whether any header line was recognised. Text without
// headers is not a snippet record.
func (r Record) HasHeaders() bool {
	for _, n := range r.counts {
		if n > 0 {
			return true
		}
	}
	return false
}

// Pairs zips LANGUAGE and CODE segments by index.
func (r Record) Pairs() []Pair {
	langs := r.repeated[Language]
	codes := r.repeated[Code]
	n := len(langs)
	if len(codes) > n {
		n = len(codes)
	}
	pairs := make([]Pair, n)
	for i := range pairs {
		if i < len(langs) {
			pairs[i].Language = langs[i]
		}
		if i < len(codes) {
			pairs[i].Code = codes[i]
		}
	}
	return pairs
}

// Single parses a raw record and returns one of its single-valued fields.
func Single(raw string, f Field) (string, bool) {
	return Parse(raw).Single(f)
}

// Repeated parses a raw record and returns every segment of a repeated field.
func Repeated(raw string, f Field) []string {
	return Parse(raw).Repeated(f)
}

// Parse parses a record with the default, case-insensitive parser.
func Parse(raw string) Record {
	return Parser{}.Parse(raw)
}

// Parser turns raw record text into a Record.
//
// Parsing is anchored to header lines: a header is only recognised at the
// start of a line and never inside a fenced code block, so code containing
// "CODE:" or a delimiter is kept as payload.
type Parser struct {
	// CaseSensitive only accepts upper-case header tokens
	CaseSensitive bool
}

type parseState int

const (
	seekHeader parseState = iota
	inTitle
	inDescription
	inLanguage
	inCode
	inSource
)

func stateFor(f Field) parseState {
	switch f {
	case Title:
		return inTitle
	case Description:
		return inDescription
	case Language:
		return inLanguage
	case Code:
		return inCode
	case Source:
		return inSource
	}
	return seekHeader
}

// Records splits a corpus and parses each record.
func (p Parser) Records(corpus string) []Record {
	raws := Split(corpus)
	records := make([]Record, len(raws))
	for i, raw := range raws {
		records[i] = p.Parse(raw)
		records[i].Index = i
	}
	return records
}

// Parse runs the header state machine over the record's lines.
func (p Parser) Parse(raw string) Record {
	rec := Record{
		Raw:      raw,
		singles:  make(map[Field]string),
		repeated: make(map[Field][]string),
		counts:   make(map[Field]int),
	}

	state := seekHeader
	var current Field
	var buf []string
	inFence := false

	flush := func() {
		if !current.repeatable() {
			return
		}
		segment := strings.Join(buf, "\n")
		if current == Language {
			segment = strings.TrimSpace(segment)
		}
		rec.repeated[current] = append(rec.repeated[current], segment)
		buf = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if state == inCode && inFence {
			buf = append(buf, line)
			if isFence(line) {
				inFence = false
			}
			continue
		}

		if f, rest, ok := p.header(line); ok {
			if state == inLanguage || state == inCode {
				flush()
			}
			rec.counts[f]++
			current = f
			state = stateFor(f)
			if f.repeatable() {
				buf = []string{rest}
				if f == Code && isFence(rest) {
					inFence = !closesOnSameLine(rest)
				}
				continue
			}
			if _, seen := rec.singles[f]; !seen {
				rec.singles[f] = strings.TrimSpace(rest)
			}
			// single-valued fields end at the newline
			state = seekHeader
			continue
		}

		switch state {
		case inLanguage:
			buf = append(buf, line)
		case inCode:
			buf = append(buf, line)
			if isFence(line) {
				inFence = true
			}
		}
	}
	if state == inLanguage || state == inCode {
		flush()
	}
	return rec
}

// header recognises "FIELD:" at the start of a line and returns the text after
// the colon.
func (p Parser) header(line string) (Field, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, f := range Fields {
		token := string(f) + ":"
		if len(trimmed) < len(token) {
			continue
		}
		prefix := trimmed[:len(token)]
		if prefix == token || (!p.CaseSensitive && strings.EqualFold(prefix, token)) {
			return f, trimmed[len(token):], true
		}
	}
	return "", "", false
}

func isFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}

// closesOnSameLine handles a whole fenced block written on the header line,
// e.g. "CODE: ```x = 1```".
func closesOnSameLine(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) > 6 && strings.HasSuffix(s, "```")
}

// StripFences removes fence lines from a code segment and trims the result.
// The info string after an opening fence ("```python") goes with the fence.
// A block closed on the first line, the remainder of the CODE header, keeps
// its content even when it is a single token ("CODE: ```ls```").
func StripFences(code string) string {
	lines := strings.Split(code, "\n")
	kept := lines[:0:0]
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if closesOnSameLine(trimmed) {
				inner := strings.TrimSpace(strings.Trim(trimmed, "`"))
				// later "```python```" lines carry no code
				if i == 0 || strings.ContainsAny(inner, " \t") {
					kept = append(kept, inner)
				}
			}
			continue
		}
		kept = append(kept, strings.TrimSuffix(line, "\r"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// NonEmptyLines returns the lines of s that are not blank.
func NonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
