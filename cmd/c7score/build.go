package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	language "cloud.google.com/go/language/apiv1"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/MaTriXy/c7score"
	"github.com/MaTriXy/c7score/internal/config"
	"github.com/MaTriXy/c7score/llmjudge"
)

// runFlags are the evaluation switches shared by evaluate and batch.
type runFlags struct {
	noLLM  bool
	syntax bool
	groups bool
	json   bool
	save   bool
	output string
}

// buildEvaluator wires the configured components. The returned cleanup
// releases the Cloud clients.
func buildEvaluator(ctx context.Context, cfg *config.Config, flags runFlags, logger *zap.Logger, extra ...func(*c7score.EvaluatorOptions)) (*c7score.Evaluator, func(), error) {
	cleanup := func() {}
	opts := []func(*c7score.EvaluatorOptions){
		c7score.WithLogger(logger),
		c7score.WithScale(cfg.Scale),
		c7score.WithWeights(c7score.Weights(cfg.Weights)),
		c7score.WithHeuristicOptions(cfg.HeuristicOptions()),
		c7score.WithRubricOptions(llmjudge.SnippetRubricOptions{MaxPromptTokens: cfg.LLM.MaxPromptTokens}),
	}
	if flags.groups {
		opts = append(opts, c7score.WithGroupedHeuristics())
	}
	if flags.syntax || cfg.Syntax.Enabled {
		opts = append(opts, c7score.WithSyntax(c7score.SyntaxOptions{Timeout: cfg.Syntax.Timeout}))
	}

	if cfg.LLM.Enabled && !flags.noLLM {
		client, err := newGenaiClient(ctx, cfg.LLM)
		if err != nil {
			return nil, cleanup, err
		}
		geminiOpts := []func(*c7score.GeminiOptions){
			c7score.WithGenaiClient(client),
			c7score.WithModelName(cfg.LLM.Model),
			c7score.WithSampling(cfg.Sampling()),
		}
		if cfg.LLM.Legacy {
			geminiOpts = append(geminiOpts, c7score.WithLegacyRubric())
		}
		if cfg.LLM.DetectLanguage {
			langClient, err := language.NewClient(ctx)
			if err != nil {
				return nil, cleanup, fmt.Errorf("creating language client: %w", err)
			}
			cleanup = func() { langClient.Close() }
			geminiOpts = append(geminiOpts, c7score.WithLanguageClient(langClient))
		}
		opts = append(opts, c7score.WithGemini(geminiOpts...))
	}

	ev, err := c7score.NewEvaluator(append(opts, extra...)...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return ev, cleanup, nil
}

func newGenaiClient(ctx context.Context, cfg config.LLMConfig) (*genai.Client, error) {
	cc := &genai.ClientConfig{}
	switch cfg.Backend {
	case config.BackendVertex:
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	default:
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = os.Getenv(cfg.APIKeyEnv)
		if cc.APIKey == "" {
			return nil, fmt.Errorf("%s is not set; export it or run with --no-llm", cfg.APIKeyEnv)
		}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return client, nil
}

// loadInput reads a corpus file and an optional reference file. The library
// name defaults to the corpus file name without extension.
func loadInput(corpusPath, referencePath, library string) (c7score.Input, error) {
	data, err := os.ReadFile(corpusPath)
	if err != nil {
		return c7score.Input{}, fmt.Errorf("reading corpus: %w", err)
	}
	in := c7score.Input{Library: library, Corpus: string(data)}
	if in.Library == "" {
		base := filepath.Base(corpusPath)
		in.Library = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if referencePath != "" {
		ref, err := os.ReadFile(referencePath)
		if err != nil {
			return c7score.Input{}, fmt.Errorf("reading reference: %w", err)
		}
		in.Reference = string(ref)
	}
	return in, nil
}
