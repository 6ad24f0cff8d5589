// Package gemini implements the api collaborators on top of Google's genai
// SDK and the Cloud Natural Language API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/MaTriXy/c7score/api"
)

// Default sampling parameters for rubric evaluation.
const (
	DefaultTemperature = 1.0
	DefaultTopP        = 0.95
	DefaultTopK        = 64
)

// Sampling holds generation parameters passed with every request.
type Sampling struct {
	Temperature float32
	TopP        float32
	TopK        float32
}

// DefaultSampling returns the sampling used by NewGenerator.
func DefaultSampling() Sampling {
	return Sampling{Temperature: DefaultTemperature, TopP: DefaultTopP, TopK: DefaultTopK}
}

// Generator wraps a genai.Client to implement the LLMGenerator and TextGenerator interfaces
type Generator struct {
	client    *genai.Client
	modelName string
	sampling  Sampling
}

// NewGenerator creates a new Gemini generator
// client: genai.Client from google.golang.org/genai
// modelName: the model to use (e.g., "gemini-2.5-pro")
func NewGenerator(client *genai.Client, modelName string) *Generator {
	return &Generator{
		client:    client,
		modelName: modelName,
		sampling:  DefaultSampling(),
	}
}

// WithSampling returns a copy of the generator using the given sampling parameters.
func (g *Generator) WithSampling(s Sampling) *Generator {
	cp := *g
	cp.sampling = s
	return &cp
}

func (g *Generator) config() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.sampling.Temperature),
		TopP:        genai.Ptr(g.sampling.TopP),
		TopK:        genai.Ptr(g.sampling.TopK),
	}
}

// Generate implements TextGenerator.Generate
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.modelName,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		g.config(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", api.ErrEmptyResponse
	}
	return text, nil
}

// StructuredGenerate implements LLMGenerator.StructuredGenerate
// The schema is sent as the response JSON schema and the answer is decoded into a map.
func (g *Generator) StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error) {
	cfg := g.config()
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseJsonSchema = schema

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.modelName,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" || text == "null" {
		return nil, api.ErrEmptyResponse
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrSchemaViolation, err)
	}
	return out, nil
}

// TokenCounter counts prompt tokens with the model's own tokenizer
type TokenCounter struct {
	client    *genai.Client
	modelName string
}

// NewTokenCounter creates a TokenCounter for the given model
func NewTokenCounter(client *genai.Client, modelName string) *TokenCounter {
	return &TokenCounter{client: client, modelName: modelName}
}

// CountTokens implements TokenCounter.CountTokens
func (c *TokenCounter) CountTokens(ctx context.Context, prompt string) (int, error) {
	resp, err := c.client.Models.CountTokens(
		ctx,
		c.modelName,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return int(resp.TotalTokens), nil
}

// Verify that Generator and TokenCounter implement the api interfaces
var (
	_ api.LLMGenerator  = (*Generator)(nil)
	_ api.TextGenerator = (*Generator)(nil)
	_ api.TokenCounter  = (*TokenCounter)(nil)
)
