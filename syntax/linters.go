package syntax

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxBlockScore is the best score a single code block can get.
const MaxBlockScore = 10.0

// Linter describes an external tool that checks one language family.
type Linter struct {
	// Name is the executable to run
	Name string
	// Languages are the LANGUAGE values this linter handles, lower case
	Languages []string
	// Ext is the file extension of the temporary source file
	Ext string
	// Args builds the command line for a source file
	Args func(path string) []string
	// OK reports whether an exit code means the tool ran, findings or not
	OK func(exitCode int) bool
	// Score turns the tool output into a 0-10 block score
	Score func(res Result, lines int) (float64, error)
}

var (
	pylintRatingRegex = regexp.MustCompile(`rated at (-?\d+(?:\.\d+)?)/10`)
	defectRegex       = regexp.MustCompile(`(?m):\d+:\d+: (?:fatal error|error|warning|note)\b`)
)

// DefaultLinters returns pylint, shellcheck, clang-tidy and quick-lint-js.
func DefaultLinters() []Linter {
	return []Linter{
		{
			Name:      "pylint",
			Languages: []string{"python", "py", "python3"},
			Ext:       ".py",
			Args: func(path string) []string {
				return []string{
					path,
					"--disable=import-error,no-name-in-module,undefined-variable,missing-module-docstring," +
						"missing-final-newline,unused-import,used-before-assignment",
				}
			},
			// bit 1 is a fatal message, bit 32 a usage error
			OK: func(code int) bool { return code&1 == 0 && code&32 == 0 },
			Score: func(res Result, _ int) (float64, error) {
				return pylintRating(string(res.Stdout))
			},
		},
		{
			Name:      "shellcheck",
			Languages: []string{"bash", "sh", "shell", "zsh"},
			Ext:       ".sh",
			Args: func(path string) []string {
				return []string{"-f", "gcc", "-e", "SC2148", path}
			},
			OK:    func(code int) bool { return code == 0 || code == 1 },
			Score: defectScore(func(r Result) string { return string(r.Stdout) }),
		},
		{
			Name:      "clang-tidy",
			Languages: []string{"c", "cpp", "c++", "cxx"},
			Ext:       ".cpp",
			Args: func(path string) []string {
				return []string{path, "--", "-Wno-unused-command-line-argument"}
			},
			OK:    func(code int) bool { return code == 0 || code == 1 },
			Score: defectScore(func(r Result) string { return string(r.Stdout) }),
		},
		{
			Name:      "quick-lint-js",
			Languages: []string{"javascript", "js", "jsx"},
			Ext:       ".js",
			Args: func(path string) []string {
				return []string{path}
			},
			OK:    func(code int) bool { return code == 0 || code == 1 },
			Score: defectScore(func(r Result) string { return string(r.Stderr) }),
		},
	}
}

// DefaultIgnoredLanguages are LANGUAGE values never sent to a linter.
func DefaultIgnoredLanguages() []string {
	return []string{"console", "none", "configuration", "text", "makefile"}
}

func pylintRating(out string) (float64, error) {
	m := pylintRatingRegex.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no pylint rating in output")
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parse pylint rating %q: %w", m[1], err)
	}
	return clamp(v), nil
}

// defectScore counts diagnostics in gcc-style output and converts them with
// max(0, 10 - defects/lines*10).
func defectScore(stream func(Result) string) func(Result, int) (float64, error) {
	return func(res Result, lines int) (float64, error) {
		return DefectScore(CountDefects(stream(res)), lines), nil
	}
}

// CountDefects counts "file:line:col: level" diagnostics.
func CountDefects(out string) int {
	return len(defectRegex.FindAllStringIndex(out, -1))
}

// DefectScore converts a defect count over a number of lines to a 0-10 score.
func DefectScore(defects, lines int) float64 {
	if lines <= 0 {
		lines = 1
	}
	return clamp(MaxBlockScore - float64(defects)/float64(lines)*MaxBlockScore)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(MaxBlockScore, v))
}

func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
