package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/MaTriXy/c7score/api"
)

// fakeGemini answers generateContent and countTokens with canned bodies
// and records the last request body.
type fakeGemini struct {
	generateBody string
	countBody    string
	lastRequest  string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.lastRequest = string(body)
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, ":generateContent"):
		_, _ = io.WriteString(w, f.generateBody)
	case strings.HasSuffix(r.URL.Path, ":countTokens"):
		_, _ = io.WriteString(w, f.countBody)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeGemini) *genai.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  srv.Client(),
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return client
}

func candidate(text string) string {
	return `{"candidates": [{"content": {"role": "model", "parts": [{"text": ` + text + `}]}}]}`
}

func TestGenerator_StructuredGenerate(t *testing.T) {
	fake := &fakeGemini{generateBody: candidate(`"{\"scores\": [80, 90, 70], \"average\": 79, \"explanation\": \"ok\"}"`)}
	gen := NewGenerator(newTestClient(t, fake), "gemini-2.5-flash")

	schema := map[string]interface{}{"type": "object"}
	got, err := gen.StructuredGenerate(context.Background(), "rate these", schema)
	require.NoError(t, err)

	assert.Equal(t, "ok", got["explanation"])
	assert.Equal(t, []interface{}{80.0, 90.0, 70.0}, got["scores"])
	assert.Contains(t, fake.lastRequest, "application/json")
	assert.Contains(t, fake.lastRequest, "temperature")
	assert.Contains(t, fake.lastRequest, "rate these")
}

func TestGenerator_EmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no candidates", body: `{"candidates": []}`},
		{name: "null payload", body: candidate(`"null"`)},
		{name: "blank text", body: candidate(`"  "`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(newTestClient(t, &fakeGemini{generateBody: tt.body}), "gemini-2.5-flash")
			_, err := gen.StructuredGenerate(context.Background(), "p", map[string]interface{}{"type": "object"})
			assert.ErrorIs(t, err, api.ErrEmptyResponse)
		})
	}
}

func TestGenerator_MalformedJSON(t *testing.T) {
	gen := NewGenerator(newTestClient(t, &fakeGemini{generateBody: candidate(`"not json"`)}), "gemini-2.5-flash")
	_, err := gen.StructuredGenerate(context.Background(), "p", map[string]interface{}{"type": "object"})
	assert.ErrorIs(t, err, api.ErrSchemaViolation)
}

func TestGenerator_Generate(t *testing.T) {
	gen := NewGenerator(newTestClient(t, &fakeGemini{generateBody: candidate(`"&---\n1. 8/10"`)}), "gemini-2.5-flash").
		WithSampling(Sampling{Temperature: 0.2, TopP: 0.5, TopK: 8})

	got, err := gen.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "&---\n1. 8/10", got)
}

func TestTokenCounter_CountTokens(t *testing.T) {
	counter := NewTokenCounter(newTestClient(t, &fakeGemini{countBody: `{"totalTokens": 42}`}), "gemini-2.5-flash")

	got, err := counter.CountTokens(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
