package wizard

import (
	"github.com/pkoukk/tiktoken-go"
)

// promptEncoding is the tokenizer used for advisory prompt statistics. The
// estimate is approximate for non-OpenAI models but close enough to warn on.
const promptEncoding = "cl100k_base"

// PromptStats is an advisory token estimate for the prompt section. It never
// gates submission.
type PromptStats struct {
	Characters    int
	Tokens        int
	ExceedsBudget bool
}

// PromptTokenStats estimates the prompt's token count and flags it when the
// estimate exceeds maxTokens (ignored when maxTokens <= 0).
func PromptTokenStats(prompt string, maxTokens int) (PromptStats, error) {
	enc, err := tiktoken.GetEncoding(promptEncoding)
	if err != nil {
		return PromptStats{}, err
	}
	tokens := len(enc.Encode(prompt, nil, nil))
	return PromptStats{
		Characters:    len(prompt),
		Tokens:        tokens,
		ExceedsBudget: maxTokens > 0 && tokens > maxTokens,
	}, nil
}
