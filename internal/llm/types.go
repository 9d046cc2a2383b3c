package llm

// Role represents the role of a message sender in a conversation. Readings
// are single-turn, so only user messages are sent.
type Role string

const RoleUser Role = "user"

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Image is an inline image part. Data is standard base64 without any
// transport prefix.
type Image struct {
	MIMEType string
	Data     string
}

// DataURL returns the image in data URL form, as OpenAI-style APIs expect.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Data
}

// CompletionRequest contains the parameters for a completion request.
// Images are attached to the last user message, ahead of its text.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Images      []Image
	MaxTokens   int
	// Temperature is sent only when non-zero; zero leaves the provider's
	// default in place.
	Temperature float64
}

// CompletionResponse contains the result of a completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// imageTarget returns the index of the message that carries req.Images,
// or -1 when there is no user message.
func (req CompletionRequest) imageTarget() int {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			return i
		}
	}
	return -1
}

// modelOr returns the request's model, falling back to def.
func (req CompletionRequest) modelOr(def string) string {
	if req.Model != "" {
		return req.Model
	}
	return def
}
