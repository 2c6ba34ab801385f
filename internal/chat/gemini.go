// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

package chat

import (
	"context"

	"google.golang.org/genai"

	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// Model generates a chat completion for one system/user prompt pair.
type Model interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// GeminiConfig holds Gemini chat configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Compile-time interface check.
var _ Model = (*GeminiModel)(nil)

// GeminiModel implements Model using the Google Gemini API with a low
// temperature suited to grounded itinerary answers.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini-backed chat model. Returns an error if
// the API key is missing.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
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

	return &GeminiModel{client: client, model: cfg.Model}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, system, user string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(user), cfg)
	if err != nil {
		return "", apperr.Wrapf(err, apperr.CodeProviderUpstreamFailure, "gemini: generating answer")
	}

	text := resp.Text()
	if text == "" {
		return "", apperr.New(apperr.CodeProviderResponseInvalid, "gemini: empty completion", apperr.FieldModel(m.model))
	}
	return text, nil
}
