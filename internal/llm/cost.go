package llm

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable lists vision-capable models.
var priceTable = map[string]modelPricing{
	"gemini-2.5-flash-image": {InputPerMillion: 0.30, OutputPerMillion: 30.00},
	"gemini-2.5-flash":       {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"gemini-2.5-pro":         {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.0-flash":       {InputPerMillion: 0.10, OutputPerMillion: 0.40},

	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},

	"claude-sonnet-4-5-20250929": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku-4-5-20251001":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
}

// imageTokens approximates what a single inline image costs in prompt
// tokens on Gemini.
const imageTokens = 258

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

// EstimateTokens provides a rough token count estimation for the given text.
// Uses the approximation of 1 token per 4 characters.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}

// EstimateRequestTokens estimates the prompt size of req, counting every
// message and a flat cost per image.
func EstimateRequestTokens(req CompletionRequest) int {
	n := len(req.Images) * imageTokens
	for _, m := range req.Messages {
		n += EstimateTokens(m.Content)
	}
	return n
}
