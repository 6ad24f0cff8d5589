package heuristic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MaTriXy/c7score/api"
	"github.com/MaTriXy/c7score/corpus"
)

type mockDetector struct {
	byTitle map[string]string
	err     error
	calls   int
}

func (m *mockDetector) DetectLanguage(ctx context.Context, text string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	title := strings.SplitN(text, "\n", 2)[0]
	if lang, ok := m.byTitle[title]; ok {
		return lang, nil
	}
	return "en", nil
}

func TestEnglishText(t *testing.T) {
	ctx := context.Background()
	text := corpus.Join([]string{
		snippet("Create a client", "go", goodCode),
		snippet("Crear un cliente", "go", goodCode),
		snippet("Configure logging", "go", goodCode),
		snippet("クライアント", "go", goodCode),
	})

	tests := []struct {
		name      string
		detector  *mockDetector
		wantScore float64
		wantErr   bool
	}{
		{
			name: "mixed languages",
			detector: &mockDetector{byTitle: map[string]string{
				"Crear un cliente": "es",
				"クライアント":           "ja",
				"Configure logging": "en-US",
			}},
			wantScore: 5,
		},
		{
			name:      "all english",
			detector:  &mockDetector{},
			wantScore: 10,
		},
		{
			name:     "detector always fails",
			detector: &mockDetector{err: errors.New("quota exceeded")},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnglishText(tt.detector, Options{}).Score(ctx, api.ScoreInputs{Corpus: text})
			if tt.wantErr {
				if got.Error == nil {
					t.Fatal("expected error, got nil")
				}
				if got.Score != 0 {
					t.Errorf("Score = %v, want 0 on error", got.Score)
				}
				return
			}
			if got.Error != nil {
				t.Fatalf("unexpected error: %v", got.Error)
			}
			if !approx(got.Score, tt.wantScore) {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if tt.detector.calls != 4 {
				t.Errorf("detector called %d times, want 4", tt.detector.calls)
			}
		})
	}
}

func TestEnglishText_NoDetector(t *testing.T) {
	got := EnglishText(nil, Options{}).Score(context.Background(), api.ScoreInputs{Corpus: good()})
	if !errors.Is(got.Error, api.ErrNoLanguageDetector) {
		t.Errorf("Error = %v, want ErrNoLanguageDetector", got.Error)
	}
}

func TestEnglishText_NoSnippets(t *testing.T) {
	for _, text := range []string{"", "hello world\nno headers here"} {
		detector := &mockDetector{}
		got := EnglishText(detector, Options{}).Score(context.Background(), api.ScoreInputs{Corpus: text})
		if !errors.Is(got.Error, api.ErrNoRecords) {
			t.Errorf("%q: Error = %v, want ErrNoRecords", text, got.Error)
		}
		if got.Score != 0 {
			t.Errorf("%q: Score = %v, want 0", text, got.Score)
		}
		if detector.calls != 0 {
			t.Errorf("%q: detector called %d times, want 0", text, detector.calls)
		}
	}
}
