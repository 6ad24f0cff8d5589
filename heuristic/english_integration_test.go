package heuristic

import (
	"context"
	"os"
	"testing"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/corpus"
	"github.com/MaTriXy/c7score/gemini"
	"github.com/MaTriXy/c7score/internal/testutils"
)

// TestEnglishText_Integration detects languages with the Natural Language API.
// Requests are cached with hypert; set UPDATE_TESTS=true to record them again.
func TestEnglishText_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("GOOGLE_PROJECT_ID") == "" {
		t.Skip("GOOGLE_PROJECT_ID not set")
	}

	client := testutils.NewLanguageClient(t, testutils.DefaultGeminiTestConfig("language"))
	scorer := EnglishText(gemini.NewLanguageDetector(client), DefaultOptions())

	text := corpus.Join([]string{
		"TITLE: Create a client\nDESCRIPTION: Create a client with an API key and send the first request to the server.\n\nLANGUAGE: go\nCODE:\n```go\n" + goodCode + "\n```",
		"TITLE: Crear un cliente\nDESCRIPTION: Crea un cliente con una clave de API y envía la primera solicitud al servidor.\n\nLANGUAGE: go\nCODE:\n```go\n" + goodCode + "\n```",
	})

	got := scorer.Score(context.Background(), api.ScoreInputs{Corpus: text})
	if got.Error != nil {
		t.Fatalf("Score() error = %v", got.Error)
	}
	if !approx(got.Score, 5) {
		t.Errorf("Score() = %v, want 5 (%s)", got.Score, got.Explanation)
	}
}
