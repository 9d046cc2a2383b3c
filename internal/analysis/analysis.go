// Package analysis sends a palm image to a vision-capable model and returns
// the markdown reading.
package analysis

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/palmguru/palmguru/internal/dataurl"
	"github.com/palmguru/palmguru/internal/llm"
	"github.com/palmguru/palmguru/internal/logging"
)

const (
	// DefaultModel is the vision-capable Gemini model used when none is configured.
	DefaultModel = "gemini-2.5-flash-image"

	// DefaultMaxOutputTokens caps the length of a reading.
	DefaultMaxOutputTokens = 1024

	// FallbackText replaces an empty model response.
	FallbackText = "Could not generate a response. Please try again."

	// ErrorPrefix starts every AnalysisError message.
	ErrorPrefix = "Failed to analyze palm: "
)

// Prompt is the fixed instruction sent with every image.
const Prompt = `Analyze this palm image for palmistry. Identify and describe the Heart Line, Mind Line, and Fate Line. ` +
	`Based on these lines and other visible features, describe the person's personality and traits. ` +
	`Provide a general, entertaining future prediction. ` +
	`Conclude with a clear statement: "Disclaimer: This analysis is for entertainment purposes only and should not be taken as professional advice." ` +
	`Ensure the response is detailed and engaging.`

// AnalysisError is returned for every transport or API failure.
type AnalysisError struct {
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

func newAnalysisError(cause error) *AnalysisError {
	return &AnalysisError{Message: ErrorPrefix + cause.Error(), Cause: cause}
}

// Analyzer turns an encoded image into reading text.
type Analyzer interface {
	Analyze(ctx context.Context, image string) (string, error)
}

// Client makes exactly one request per Analyze call. It never retries and
// does not stream.
type Client struct {
	provider  llm.Provider
	model     string
	maxTokens int
	log       *logrus.Entry
}

// NewClient creates a client. Empty model and non-positive maxTokens fall
// back to DefaultModel and DefaultMaxOutputTokens.
func NewClient(provider llm.Provider, model string, maxTokens int) *Client {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxOutputTokens
	}
	return &Client{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
		log:       logging.WithComponent("analysis"),
	}
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends image, an encoded image string such as
// "data:image/jpeg;base64,...", with the fixed prompt. An empty response
// yields FallbackText. Failures are *AnalysisError.
func (c *Client) Analyze(ctx context.Context, image string) (string, error) {
	img, err := imagePart(image)
	if err != nil {
		return "", newAnalysisError(err)
	}

	req := llm.CompletionRequest{
		Model:     c.model,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: Prompt}},
		Images:    []llm.Image{img},
		MaxTokens: c.maxTokens,
	}

	log := c.log.WithFields(logrus.Fields{
		"provider": c.provider.Name(),
		"model":    c.model,
		"mime":     img.MIMEType,
	})
	log.WithField("estimated_input_tokens", llm.EstimateRequestTokens(req)).Debug("analysis: sending request")

	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		log.WithError(err).Warn("analysis: request failed")
		return "", newAnalysisError(err)
	}

	log.WithFields(logrus.Fields{
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
		"finish_reason": resp.FinishReason,
		"cost_usd":      llm.EstimateCost(c.model, resp.InputTokens, resp.OutputTokens),
	}).Info("analysis: reading received")

	if resp.Content == "" {
		return FallbackText, nil
	}
	return resp.Content, nil
}

// imagePart strips the transport prefix and keeps the declared MIME type.
func imagePart(image string) (llm.Image, error) {
	if image == "" {
		return llm.Image{}, errors.New("no image provided")
	}
	d, err := dataurl.Parse(image)
	if err != nil {
		return llm.Image{}, err
	}
	if d.Payload == "" {
		return llm.Image{}, dataurl.ErrEmptyImage
	}
	return llm.Image{MIMEType: d.MIMEType, Data: d.Payload}, nil
}
