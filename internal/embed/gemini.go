// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package embed

import (
	"context"

	"google.golang.org/genai"

	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// GeminiConfig holds Gemini embedding configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Compile-time interface check.
var _ Embedder = (*GeminiEmbedder)(nil)

// GeminiEmbedder implements Embedder using the Google Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates a Gemini-backed embedder. Returns an error
// if the API key is missing.
func NewGeminiEmbedder(ctx context.Context, cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, apperr.New(apperr.CodeProviderRequestInvalid, "gemini: missing api_key in config", apperr.FieldModel(cfg.Model))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeProviderUpstreamFailure, "gemini: creating client")
	}

	return &GeminiEmbedder{client: client, model: cfg.Model}, nil
}

func (e *GeminiEmbedder) Model() string { return e.model }

// Embed requests one embedding per text from the Gemini API.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		}
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: string(task),
	})
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeProviderUpstreamFailure, "gemini: embedding %d texts", len(texts))
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, apperr.Errorf(apperr.CodeProviderResponseInvalid,
			"gemini: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
