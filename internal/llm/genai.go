package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"
)

// GenAIProvider talks to Gemini through the official Go SDK.
type GenAIProvider struct {
	client *genai.Client
	model  string
}

// NewGenAIProvider creates an SDK client for the Gemini API backend.
func NewGenAIProvider(ctx context.Context, apiKey string, model string) (*GenAIProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIProvider{client: client, model: model}, nil
}

func (p *GenAIProvider) Name() string {
	return "genai"
}

// buildContents maps the request onto SDK contents and generation config.
func buildContents(req CompletionRequest) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature != 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	target := req.imageTarget()

	for i, msg := range req.Messages {
		var parts []*genai.Part
		if i == target {
			for _, img := range req.Images {
				data, err := base64.StdEncoding.DecodeString(img.Data)
				if err != nil {
					return nil, nil, fmt.Errorf("decoding image part: %w", err)
				}
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: data},
				})
			}
		}
		parts = append(parts, genai.NewPartFromText(msg.Content))
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
	return contents, cfg, nil
}

func (p *GenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.modelOr(p.model)

	contents, cfg, err := buildContents(req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	out := &CompletionResponse{
		Content: resp.Text(),
		Model:   model,
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}
