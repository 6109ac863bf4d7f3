package domain

// Turn is a single message within a conversation. Message is the text the
// pipeline operates on; IsHuman is carried through untouched.
type Turn struct {
	Message string `json:"message"`
	IsHuman bool   `json:"is_human"`
}

// GateResult holds the outcome of a language-gate evaluation.
type GateResult struct {
	// Accepted reports whether the conversation passed the threshold test.
	Accepted bool
	// TotalTurns is the number of turns that were classified.
	TotalTurns int
	// ForeignTurns is the number of turns classified as not being in the
	// target language, including turns whose classification failed.
	ForeignTurns int
	// ForeignRatio is ForeignTurns / TotalTurns, or 0 for an empty
	// conversation.
	ForeignRatio float64
	// Threshold used to determine acceptance.
	Threshold float64
}

// Result holds the outcome of cleaning one conversation.
type Result struct {
	// Name of the pipeline that produced this result.
	Name string
	// Accepted reports whether the conversation survived the language gate.
	// When false, Conversation is nil and the record should be dropped.
	Accepted bool
	// Conversation holds the cleaned turns when Accepted is true.
	Conversation []Turn
	// Gate carries the language-gate numbers for logging and diagnostics.
	Gate GateResult
	// Details holds additional diagnostic information.
	Details map[string]interface{}
}
