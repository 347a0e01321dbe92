package llm

import "context"

// Session is an opaque reference to conversational state held by the remote
// chat service. Callers never inspect it; they hand it back to the Provider
// that created it.
type Session interface {
	// ID is a provider-specific identifier used for logging only.
	ID() string
}

// SessionConfig configures a new remote chat session.
type SessionConfig struct {
	Model             string // Remote model identifier (e.g., "gemini-2.5-flash")
	SystemInstruction string // Fixed persona and policy prompt
	SearchGrounding   bool   // Enable the web search grounding tool
}

// Provider is a remote multimodal chat service.
type Provider interface {
	// StartSession opens a conversational session on the remote service.
	StartSession(ctx context.Context, cfg SessionConfig) (Session, error)

	// Send submits one turn on the session. The remote side accumulates the
	// turn into the session history.
	Send(ctx context.Context, session Session, parts []Part) (*Reply, error)
}

// Part is one ordered piece of a turn's content. Exactly one of Text or
// InlineData is set.
type Part struct {
	Text       string        `json:"text,omitempty"`
	InlineData *ImagePayload `json:"inline_data,omitempty"`
}

// ImagePayload is an inline image ready for transmission.
type ImagePayload struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64 payload without the data-URI prefix
}
