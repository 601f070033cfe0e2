package con

import "strings"

// Tokenizer estimates how many LLM tokens a piece of text would cost.
// CountTokens defaults to EstimateTokens when none is supplied.
type Tokenizer func(text string) int

// EstimateTokens is the default Tokenizer: a trivial character/word-ratio
// estimate (spec §1's "roughly 4 characters per token" rule of thumb),
// good enough for comparing CON against JSON without depending on any
// particular model's real tokenizer.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	byChars := (len(text) + 3) / 4
	// A text made mostly of short, punctuation-heavy tokens (CON and JSON
	// both are) tends to tokenize closer to one token per word than one
	// per four characters; take the larger of the two estimates so
	// neither format is flattered by the approximation.
	if words > byChars {
		return words
	}
	return byChars
}

// Savings reports the tokens and characters saved by choosing conText over
// jsonText (JSON count minus CON count), each also as a percentage of the
// JSON count. All four are negative when conText costs more than jsonText.
type Savings struct {
	Tokens        int     `json:"tokens"`
	TokensPercent float64 `json:"tokens_percent"`
	Chars         int     `json:"chars"`
	CharsPercent  float64 `json:"chars_percent"`
}

// TokenSavings is the result of CountTokens, per spec §6's count_tokens
// operation.
type TokenSavings struct {
	ConTokens  int     `json:"con_tokens"`
	JSONTokens int     `json:"json_tokens"`
	ConChars   int     `json:"con_chars"`
	JSONChars  int     `json:"json_chars"`
	Savings    Savings `json:"savings"`
}

// CountTokens implements spec §6's count_tokens operation: given the same
// logical value already rendered as both CON text and JSON text, it
// reports their relative token and character cost. A nil tokenizer
// selects EstimateTokens.
func CountTokens(conText, jsonText string, tokenizer Tokenizer) TokenSavings {
	if tokenizer == nil {
		tokenizer = EstimateTokens
	}

	s := TokenSavings{
		ConTokens:  tokenizer(conText),
		JSONTokens: tokenizer(jsonText),
		ConChars:   len(conText),
		JSONChars:  len(jsonText),
	}
	s.Savings.Tokens = s.JSONTokens - s.ConTokens
	s.Savings.Chars = s.JSONChars - s.ConChars
	if s.JSONTokens > 0 {
		s.Savings.TokensPercent = 100 * float64(s.Savings.Tokens) / float64(s.JSONTokens)
	}
	if s.JSONChars > 0 {
		s.Savings.CharsPercent = 100 * float64(s.Savings.Chars) / float64(s.JSONChars)
	}
	return s
}
