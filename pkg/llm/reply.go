package llm

// Reply is a provider's answer to one turn.
type Reply struct {
	// Text is the rendered reply text.
	Text string `json:"text"`

	// Chunks are the grounding chunks of the first candidate, in the order the
	// service returned them. Chunks without a web citation have an empty URI.
	Chunks []Source `json:"chunks,omitempty"`
}
