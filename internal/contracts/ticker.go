package contracts

// TickerMatch is one symbol-search hit
type TickerMatch struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Region string `json:"region,omitempty"`
}

// MaxTickerSuggestions bounds TickerResult.Suggestions
const MaxTickerSuggestions = 5

// TickerResult is the outcome of a symbol search.
// Found=false with no suggestions is a valid answer, not an error.
type TickerResult struct {
	Found       bool          `json:"found"`
	Query       string        `json:"query"`
	Ticker      string        `json:"ticker,omitempty"`
	Name        string        `json:"name,omitempty"`
	Type        string        `json:"type,omitempty"`
	Region      string        `json:"region,omitempty"`
	Suggestions []TickerMatch `json:"suggestions"`
	Message     string        `json:"message"`
}
