// Package llm provides the internal representations of chat messages, remote
// session handles and provider replies shared by the VisorX components.
package llm

// ErrorResponse represents an error returned by the VisorX JSON API.
type ErrorResponse struct {
	Error string `json:"error"`
}
