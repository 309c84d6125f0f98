package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ai-digest-be/pkg/llm"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	opts := llm.Resolve(llm.Options{Model: p.model}, options...)

	system, rest := llm.SplitSystem(history)
	contents := make([]*genai.Content, 0, len(rest))
	for _, msg := range rest {
		var role string = genai.RoleUser
		if msg.Role == llm.RoleAssistant || msg.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.TopP > 0 {
		config.TopP = genai.Ptr(float32(opts.TopP))
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, opts.Model, contents, config)
	if err != nil {
		return nil, classify(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, llm.ErrEmptyResponse
	}
	return &llm.Completion{Text: text, Model: resp.ModelVersion}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	return p.Chat(ctx, []llm.Message{llm.User(prompt)}, options...)
}

// classify maps genai failures onto llm.StatusError so the completion
// client can apply its retry table.
func classify(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.StatusError{Provider: "gemini", StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "429"), strings.Contains(strings.ToLower(msg), "quota"):
		return &llm.StatusError{Provider: "gemini", StatusCode: http.StatusTooManyRequests, Body: msg}
	case strings.Contains(msg, "UNAVAILABLE"), strings.Contains(msg, "503"):
		return &llm.StatusError{Provider: "gemini", StatusCode: http.StatusServiceUnavailable, Body: msg}
	case strings.Contains(msg, "PERMISSION_DENIED"), strings.Contains(msg, "API key not valid"):
		return &llm.StatusError{Provider: "gemini", StatusCode: http.StatusUnauthorized, Body: msg}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}
