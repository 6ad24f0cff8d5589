package llmjudge

import (
	"fmt"
	"math"
	"strings"

	"github.com/MaTriXy/c7score/corpus"
)

const rubricPromptHeader = `Rate the quality of the snippets using the criteria.
Score each criterion between 0 and 100, where 0 means the criterion was not met at all,
50 means it was partially met, and 100 means it was fully met with no room for improvement.
Each score should represent the share of snippets that meet the criterion.
The snippets are separated by the line
%s
and the code blocks are enclosed in ` + "```" + `.

Criteria:
%s
Return one integer score per criterion in the order listed, the weighted average of the scores,
and no more than a 1-2 sentence explanation with each sentence on a new line.
`

const legacyPromptHeader = `For each criterion, provide a score between 0 and 10, where 0 is the criterion was not met at all,
5 is the criterion was partially met, and 10 is the criterion was fully met with no room for improvement.
Also include a short explanation for each score. Write the score of each criterion as "N/10" on its own line,
in the order the criteria are listed. At the end of your response, calculate a **Total Score** by summing
the %d individual scores. The maximum possible total is %d.
The snippets are separated by the line
%s
and the code blocks are enclosed in ` + "```" + `. Do not include the snippets in your response.
Make sure to start your response with "%s".
Your scores should represent a ratio of how many snippets meet the criterion out of the total number of snippets.

Criteria:
%s`

// buildPrompt embeds the whole corpus, and the reference when present, under
// the rubric.
func buildPrompt(corpusText, reference string, criteria []Criterion) string {
	var b strings.Builder
	fmt.Fprintf(&b, rubricPromptHeader, corpus.Delimiter, listCriteria(criteria, true))
	writeInputs(&b, corpusText, reference)
	return b.String()
}

func buildLegacyPrompt(corpusText, reference string, criteria []Criterion) string {
	var b strings.Builder
	fmt.Fprintf(&b, legacyPromptHeader, len(criteria), legacyCriterionMax*len(criteria), corpus.Delimiter, legacyPrefix, listCriteria(criteria, false))
	writeInputs(&b, corpusText, reference)
	return b.String()
}

func writeInputs(b *strings.Builder, corpusText, reference string) {
	if reference != "" {
		fmt.Fprintf(b, "\nRequired information: %s\n", reference)
	}
	fmt.Fprintf(b, "\nSnippets:\n%s\n", corpusText)
}

func listCriteria(criteria []Criterion, withWeights bool) string {
	total := 0.0
	for _, c := range criteria {
		total += c.Weight
	}

	var b strings.Builder
	for i, c := range criteria {
		title := strings.ReplaceAll(c.Name, "_", " ")
		if withWeights {
			pct := math.Round(c.Weight / total * 100)
			fmt.Fprintf(&b, "%d. %s (%.0f%%): %s\n", i+1, title, pct, c.Description)
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Description)
	}
	return b.String()
}

// EstimateTokens approximates a token count as one token per four bytes,
// rounded up. It is used when no TokenCounter is configured.
func EstimateTokens(s string) int {
	const bytesPerToken = 4
	n := len(s)
	if n == 0 {
		return 0
	}
	return (n + bytesPerToken - 1) / bytesPerToken
}
