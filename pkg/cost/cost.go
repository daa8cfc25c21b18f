// Package cost estimates per-call API cost from a static per-model rate
// table. Rates are USD per 1K tokens; estimates are rounded to six decimal
// places. Unknown models cost 0.0 rather than erroring, since custom and
// local models without published pricing are common on the request path.
package cost

import "math"

// Rate holds prompt and completion pricing in USD per 1K tokens.
type Rate struct {
	Prompt     float64
	Completion float64
}

// defaultRates is the built-in rate table.
var defaultRates = map[string]Rate{
	// OpenAI GPT models.
	"gpt-4":         {Prompt: 0.03, Completion: 0.06},
	"gpt-4-turbo":   {Prompt: 0.01, Completion: 0.03},
	"gpt-4o":        {Prompt: 0.005, Completion: 0.015},
	"gpt-4o-mini":   {Prompt: 0.00015, Completion: 0.0006},
	"gpt-3.5-turbo": {Prompt: 0.0015, Completion: 0.002},

	// Bedrock Anthropic models. Prices vary by region; these are the
	// us-east-1 list prices.
	"anthropic.claude-3-5-sonnet-20241022-v2:0": {Prompt: 0.003, Completion: 0.015},
	"anthropic.claude-3-5-sonnet-20240620-v1:0": {Prompt: 0.003, Completion: 0.015},
	"anthropic.claude-3-5-haiku-20241022-v1:0":  {Prompt: 0.0008, Completion: 0.004},
	"anthropic.claude-3-sonnet-20240229-v1:0":   {Prompt: 0.003, Completion: 0.015},
	"anthropic.claude-3-haiku-20240307-v1:0":    {Prompt: 0.00025, Completion: 0.00125},
	"anthropic.claude-3-opus-20240229-v1:0":     {Prompt: 0.015, Completion: 0.075},
}

// defaultAliases maps short model names to canonical rate table IDs.
var defaultAliases = map[string]string{
	"claude-3-sonnet":      "anthropic.claude-3-sonnet-20240229-v1:0",
	"claude-3-haiku":       "anthropic.claude-3-haiku-20240307-v1:0",
	"claude-3-opus":        "anthropic.claude-3-opus-20240229-v1:0",
	"claude-3.5-sonnet":    "anthropic.claude-3-5-sonnet-20240620-v1:0",
	"claude-3.5-sonnet-v2": "anthropic.claude-3-5-sonnet-20241022-v2:0",
	"claude-3.5-haiku":     "anthropic.claude-3-5-haiku-20241022-v1:0",
}

// Estimator computes cost estimates against a rate table with alias
// resolution. The zero value is not usable; construct with NewEstimator.
// Estimators are immutable after construction and safe for concurrent use.
type Estimator struct {
	rates   map[string]Rate
	aliases map[string]string
}

// NewEstimator creates an Estimator with the built-in rate table. Extra
// aliases (short name -> canonical model ID) are merged over the built-in
// alias table; they may be nil.
func NewEstimator(extraAliases map[string]string) *Estimator {
	aliases := make(map[string]string, len(defaultAliases)+len(extraAliases))
	for short, canonical := range defaultAliases {
		aliases[short] = canonical
	}
	for short, canonical := range extraAliases {
		aliases[short] = canonical
	}
	return &Estimator{rates: defaultRates, aliases: aliases}
}

// Resolve returns the canonical model ID for the given model name, or the
// name unchanged if no alias matches.
func (e *Estimator) Resolve(model string) string {
	if canonical, ok := e.aliases[model]; ok {
		return canonical
	}
	return model
}

// Estimate returns the estimated cost in USD for an API call, rounded to
// six decimal places. Unknown models return 0.0.
func (e *Estimator) Estimate(model string, promptTokens, completionTokens int) float64 {
	rate, ok := e.rates[e.Resolve(model)]
	if !ok {
		return 0.0
	}

	promptCost := float64(promptTokens) / 1000 * rate.Prompt
	completionCost := float64(completionTokens) / 1000 * rate.Completion
	return round6(promptCost + completionCost)
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
