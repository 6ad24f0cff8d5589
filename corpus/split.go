// Package corpus recovers snippet records from a scraped documentation corpus.
//
// A corpus is a sequence of records joined by a delimiter line made of 40
// hyphens. Each record is a bag of header-tagged sections (TITLE, DESCRIPTION,
// LANGUAGE, SOURCE, CODE). Splitting and field access live here so that every
// scorer and the rubric prompt builder agree on what a record is.
package corpus

import (
	"regexp"
	"strings"
)

// Delimiter is the line that separates two records.
const Delimiter = "----------------------------------------"

// Separator is Delimiter together with the line breaks around it, as written
// between records by Join.
const Separator = "\n" + Delimiter + "\n"

// A delimiter line must be exactly 40 hyphens; CRLF line endings are accepted.
var separatorRegex = regexp.MustCompile(`\r?\n-{40}\r?\n`)

// Split cuts a corpus into raw records on the delimiter line. Records are
// neither trimmed nor merged, and empty records are kept: an empty corpus
// yields a single empty record.
func Split(corpus string) []string {
	return separatorRegex.Split(corpus, -1)
}

// Join is the inverse of Split for records that contain no delimiter line.
func Join(records []string) string {
	return strings.Join(records, Separator)
}

// Records splits the corpus and parses every record with the default parser.
func Records(corpus string) []Record {
	return Parser{}.Records(corpus)
}
