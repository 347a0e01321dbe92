// Package chatclient opens the VisorX session on a remote chat provider and
// submits single turns of text and images on it.
package chatclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/papercomputeco/visorx/pkg/llm"
)

// Client wraps a Provider with the VisorX session policy.
type Client struct {
	provider   llm.Provider
	config     llm.SessionConfig
	emptyReply string
	logger     *zap.Logger
}

// New creates a Client. emptyReply is the guidance returned when a turn has
// neither text nor image.
func New(provider llm.Provider, model, emptyReply string, logger *zap.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		provider: provider,
		config: llm.SessionConfig{
			Model:             model,
			SystemInstruction: SystemInstruction,
			SearchGrounding:   true,
		},
		emptyReply: emptyReply,
		logger:     logger,
	}
}

// StartSession opens the conversational session. Errors are returned as-is to
// the caller; there is no retry.
func (c *Client) StartSession(ctx context.Context) (llm.Session, error) {
	session, err := c.provider.StartSession(ctx, c.config)
	if err != nil {
		return nil, fmt.Errorf("start chat session: %w", err)
	}

	c.logger.Info("chat session started",
		zap.String("session", session.ID()),
		zap.String("model", c.config.Model),
		zap.Bool("search_grounding", c.config.SearchGrounding),
	)
	return session, nil
}

// SendTurn submits text and an optional image on session and returns the
// model's message. The image part precedes the trimmed text. When both are
// empty the provider is not contacted.
func (c *Client) SendTurn(ctx context.Context, session llm.Session, text string, image *llm.ImagePayload) (*llm.Message, error) {
	parts := BuildParts(text, image)
	if len(parts) == 0 {
		return &llm.Message{Role: llm.RoleModel, Content: c.emptyReply}, nil
	}

	c.logger.Debug("sending turn",
		zap.String("session", session.ID()),
		zap.Int("parts", len(parts)),
		zap.Bool("image", image != nil),
		zap.String("text_preview", truncate(text, 100)),
	)

	reply, err := c.provider.Send(ctx, session, parts)
	if err != nil {
		return nil, err
	}

	msg := &llm.Message{
		Role:    llm.RoleModel,
		Content: reply.Text,
		Sources: CitedSources(reply.Chunks),
	}

	c.logger.Debug("received reply",
		zap.String("session", session.ID()),
		zap.Int("sources", len(msg.Sources)),
		zap.String("content_preview", truncate(msg.Content, 100)),
	)
	return msg, nil
}

// BuildParts orders a turn's content: image first, then trimmed text.
func BuildParts(text string, image *llm.ImagePayload) []llm.Part {
	var parts []llm.Part
	if image != nil {
		parts = append(parts, llm.Part{InlineData: image})
	}
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, llm.Part{Text: t})
	}
	return parts
}

// CitedSources keeps the chunks that carry a web URI, in order.
func CitedSources(chunks []llm.Source) []llm.Source {
	var out []llm.Source
	for _, ch := range chunks {
		if ch.URI == "" {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// truncate shortens s for log previews without splitting runes.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return ansi.Truncate(s, maxLen, "...")
}
