package llmjudge

import (
	"context"
	"os"
	"testing"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/internal/testutils"
)

const integrationModel = "publishers/google/models/gemini-2.5-flash"

// TestSnippetRubric_Integration tests the rubric scorer with real Gemini API calls
// This test requires valid Google Cloud credentials and uses hypert to cache requests
func TestSnippetRubric_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("GOOGLE_PROJECT_ID") == "" {
		t.Skip("GOOGLE_PROJECT_ID not set")
	}

	ctx := context.Background()
	cfg := testutils.DefaultGeminiTestConfig("rubric")
	llmGen := testutils.NewGeminiGenerator(t, cfg, integrationModel)
	counter := testutils.NewGeminiTokenCounter(t, cfg, integrationModel)

	tests := []struct {
		name      string
		reference string
		minScore  float64
		maxScore  float64
	}{
		{
			name:     "clean corpus",
			minScore: 40,
			maxScore: 100,
		},
		{
			name:      "clean corpus with reference",
			reference: "How to create a client and how to close it",
			minScore:  40,
			maxScore:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := SnippetRubric(llmGen, SnippetRubricOptions{TokenCounter: counter})
			result := scorer.Score(ctx, api.ScoreInputs{Corpus: testCorpus, Reference: tt.reference})

			if result.Error != nil {
				t.Fatalf("SnippetRubric.Score() unexpected error = %v", result.Error)
			}
			if result.Score < tt.minScore || result.Score > tt.maxScore {
				t.Errorf("SnippetRubric.Score() score = %v, want between %v and %v", result.Score, tt.minScore, tt.maxScore)
				t.Logf("Explanation: %v", result.Explanation)
				t.Logf("Raw response: %v", result.Metadata["raw_response"])
			}
		})
	}
}
