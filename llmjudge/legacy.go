package llmjudge

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/MaTriXy/c7score/api"
)

const (
	legacyPrefix       = "&---"
	legacyTotalMarker  = "**Total Score**:"
	legacyCriterionMax = 10
)

var (
	legacyScoreRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*10\b`)
	numberRegex      = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

func legacyScale(criteria []Criterion) float64 {
	return float64(legacyCriterionMax * len(criteria))
}

// parseLegacy reads a free-text rubric answer. The answer starts after the
// last "&---" marker, lists one "N/10" score per criterion and ends with the
// total after "**Total Score**:".
func parseLegacy(resp string, n int) (rubricResult, error) {
	var rr rubricResult

	idx := strings.LastIndex(resp, legacyPrefix)
	if idx < 0 {
		return rr, fmt.Errorf("%w: response does not start with %q", api.ErrSchemaViolation, legacyPrefix)
	}
	body := resp[idx+len(legacyPrefix):]

	scoresPart, totalPart, found := strings.Cut(body, legacyTotalMarker)
	if !found {
		return rr, fmt.Errorf("%w: no %q line", api.ErrSchemaViolation, legacyTotalMarker)
	}

	matches := legacyScoreRegex.FindAllStringSubmatch(scoresPart, -1)
	if len(matches) != n {
		return rr, fmt.Errorf("%w: got %d criterion scores for %d criteria", api.ErrSchemaViolation, len(matches), n)
	}
	rr.scores = make([]int, n)
	for i, m := range matches {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil || f > legacyCriterionMax {
			return rr, fmt.Errorf("%w: criterion %d score %q out of range", api.ErrSchemaViolation, i+1, m[1])
		}
		rr.scores[i] = int(math.Round(f))
	}

	total := numberRegex.FindString(totalPart)
	if total == "" {
		return rr, fmt.Errorf("%w: total score missing", api.ErrSchemaViolation)
	}
	rr.reported, _ = strconv.ParseFloat(total, 64)
	rr.explanation = strings.TrimSpace(scoresPart)
	return rr, nil
}
