// Package testutils builds recorded Gemini and Natural Language clients for
// integration tests.
package testutils

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	language "cloud.google.com/go/language/apiv1"
	"github.com/areknoster/hypert"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/genai"

	"github.com/MaTriXy/c7score/gemini"
)

// ShouldUpdate returns true if tests should record fresh HTTP responses
// Set UPDATE_TESTS=true environment variable to update cached responses
func ShouldUpdate() bool {
	return os.Getenv("UPDATE_TESTS") == "true"
}

// HypertClientConfig configures hypert client creation
type HypertClientConfig struct {
	TestDataDir string
	SubDir      string // Optional subdirectory for organizing test data
}

// recorder returns a hypert client that replays from, or records into, the
// configured directory.
func recorder(t *testing.T, config HypertClientConfig) *http.Client {
	dir := config.TestDataDir
	if config.SubDir != "" {
		dir = filepath.Join(dir, config.SubDir)
	}

	namingScheme, err := hypert.NewContentHashNamingScheme(dir)
	if err != nil {
		t.Fatalf("failed to create naming scheme: %v", err)
	}

	return hypert.TestClient(t, ShouldUpdate(),
		hypert.WithNamingScheme(namingScheme),
		hypert.WithRequestValidator(hypert.ComposedRequestValidator(
			hypert.PathValidator(),
			hypert.QueryParamsValidator(),
			hypert.MethodValidator(),
		)),
	)
}

// credentialed wraps the recorder with application default credentials.
func credentialed(t *testing.T, base *http.Client) *http.Client {
	ctx := context.Background()
	creds, err := google.FindDefaultCredentials(ctx)
	if err != nil {
		t.Fatalf("failed to get default credentials: %v", err)
	}
	return oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), creds.TokenSource)
}

// NewHypertClient creates a caching HTTP client. In record mode requests are
// authenticated with application default credentials.
func NewHypertClient(t *testing.T, config HypertClientConfig) *http.Client {
	client := recorder(t, config)
	if ShouldUpdate() {
		return credentialed(t, client)
	}
	return client
}

// quotaProjectTransport bills requests to a quota project
type quotaProjectTransport struct {
	base      http.RoundTripper
	projectID string
}

func (t *quotaProjectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-Goog-User-Project", t.projectID)
	return t.base.RoundTrip(req)
}

// NewAuthenticatedHypertClient is NewHypertClient with a quota project header,
// which the Natural Language API requires for user credentials.
func NewAuthenticatedHypertClient(t *testing.T, config HypertClientConfig, projectID string) *http.Client {
	client := recorder(t, config)
	if !ShouldUpdate() {
		return client
	}
	authed := credentialed(t, client)
	return &http.Client{
		Transport: &quotaProjectTransport{base: authed.Transport, projectID: projectID},
		Timeout:   authed.Timeout,
	}
}

// GeminiTestConfig configures client creation for tests
type GeminiTestConfig struct {
	Project  string
	Location string
	SubDir   string // Subdirectory for hypert test data
}

// DefaultGeminiTestConfig reads the project and region from the environment
func DefaultGeminiTestConfig(subDir string) GeminiTestConfig {
	return GeminiTestConfig{
		Project:  os.Getenv("GOOGLE_PROJECT_ID"),
		Location: os.Getenv("GOOGLE_REGION"),
		SubDir:   subDir,
	}
}

// NewGeminiClient creates a Vertex AI backed genai client with hypert caching
func NewGeminiClient(t *testing.T, config GeminiTestConfig) *genai.Client {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  config.Project,
		Location: config.Location,
		HTTPClient: NewHypertClient(t, HypertClientConfig{
			TestDataDir: "testdata",
			SubDir:      config.SubDir,
		}),
	})
	if err != nil {
		t.Fatalf("failed to create genai client: %v", err)
	}
	return genaiClient
}

// NewGeminiGenerator creates a rubric generator for testing
func NewGeminiGenerator(t *testing.T, config GeminiTestConfig, modelName string) *gemini.Generator {
	return gemini.NewGenerator(NewGeminiClient(t, config), modelName)
}

// NewGeminiTokenCounter creates a token counter for testing
func NewGeminiTokenCounter(t *testing.T, config GeminiTestConfig, modelName string) *gemini.TokenCounter {
	return gemini.NewTokenCounter(NewGeminiClient(t, config), modelName)
}

// NewLanguageClient creates a Natural Language REST client with hypert caching
func NewLanguageClient(t *testing.T, config GeminiTestConfig) *language.Client {
	httpClient := NewAuthenticatedHypertClient(t, HypertClientConfig{
		TestDataDir: "testdata",
		SubDir:      config.SubDir,
	}, config.Project)

	client, err := language.NewRESTClient(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("failed to create language client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}
