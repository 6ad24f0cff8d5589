package gemini

import (
	"context"
	"fmt"

	language "cloud.google.com/go/language/apiv1"
	languagepb "cloud.google.com/go/language/apiv1/languagepb"

	"github.com/MaTriXy/c7score/api"
)

// LanguageDetector implements api.LanguageDetector using the Google Cloud Natural Language API client
type LanguageDetector struct {
	client *language.Client
}

// NewLanguageDetector creates a detector using a preconfigured *language.Client (auth handled by caller)
func NewLanguageDetector(client *language.Client) *LanguageDetector {
	return &LanguageDetector{client: client}
}

// DetectLanguage returns the language the API detected for the text, as a BCP-47 code
func (d *LanguageDetector) DetectLanguage(ctx context.Context, text string) (string, error) {
	if d.client == nil {
		return "", fmt.Errorf("language client is required")
	}

	req := &languagepb.AnalyzeSentimentRequest{
		Document: &languagepb.Document{
			Type: languagepb.Document_PLAIN_TEXT,
			Source: &languagepb.Document_Content{
				Content: text,
			},
		},
	}

	resp, err := d.client.AnalyzeSentiment(ctx, req)
	if err != nil {
		return "", fmt.Errorf("analyze sentiment failed: %w", err)
	}
	if resp.GetLanguage() == "" {
		return "", fmt.Errorf("no language detected")
	}
	return resp.GetLanguage(), nil
}

var _ api.LanguageDetector = (*LanguageDetector)(nil)
