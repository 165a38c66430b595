package insight

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 500
)

var ErrEmptyResponse = errors.New("model returned empty text")

type GeminiGenerator struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.New("creating gemini client error: " + err.Error())
	}
	return &GeminiGenerator{
		client:    client,
		model:     model,
		maxTokens: defaultMaxTokens,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
	})
	if err != nil {
		return "", errors.New("gemini request error: " + err.Error())
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
