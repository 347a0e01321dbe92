package llm

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message represents a single entry in a conversation transcript.
type Message struct {
	Role    Role     `json:"role"`              // "user" or "model"
	Content string   `json:"content"`           // Markdown-like message text
	Image   string   `json:"image,omitempty"`   // Optional data-URI of an attached image
	Sources []Source `json:"sources,omitempty"` // Web sources cited by a grounded reply
}

// Source is a web document cited by a grounded model reply.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// IsModel reports whether the message was authored by the model.
func (m Message) IsModel() bool {
	return m.Role == RoleModel
}
