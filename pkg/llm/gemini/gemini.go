// Package gemini implements llm.Provider on the Gemini API.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/papercomputeco/visorx/pkg/llm"
)

// ErrMissingAPIKey is returned when the provider is created without a key.
var ErrMissingAPIKey = errors.New("gemini: API key is required")

// Provider talks to the Gemini API through genai chat sessions.
type Provider struct {
	client *genai.Client
}

// New creates a Provider authenticated with apiKey.
func New(ctx context.Context, apiKey string) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &Provider{client: client}, nil
}

type session struct {
	id   string
	chat *genai.Chat
}

func (s *session) ID() string { return s.id }

// StartSession implements llm.Provider. History lives on the genai.Chat.
func (p *Provider) StartSession(ctx context.Context, cfg llm.SessionConfig) (llm.Session, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
	}
	if cfg.SearchGrounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	chat, err := p.client.Chats.Create(ctx, cfg.Model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini create chat: %w", err)
	}

	return &session{id: uuid.NewString(), chat: chat}, nil
}

// Send implements llm.Provider.
func (p *Provider) Send(ctx context.Context, s llm.Session, parts []llm.Part) (*llm.Reply, error) {
	sess, ok := s.(*session)
	if !ok {
		return nil, fmt.Errorf("gemini: foreign session %T", s)
	}

	gparts, err := toParts(parts)
	if err != nil {
		return nil, err
	}

	res, err := sess.chat.SendMessage(ctx, gparts...)
	if err != nil {
		return nil, fmt.Errorf("gemini send message: %w", err)
	}

	return toReply(res), nil
}

func toParts(parts []llm.Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, part := range parts {
		if part.InlineData == nil {
			out = append(out, genai.Part{Text: part.Text})
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("gemini: decoding image payload: %w", err)
		}
		out = append(out, genai.Part{InlineData: &genai.Blob{
			MIMEType: part.InlineData.MIMEType,
			Data:     data,
		}})
	}
	return out, nil
}

// toReply extracts the text and the first candidate's grounding chunks.
// Chunks without a web citation are kept with an empty URI.
func toReply(res *genai.GenerateContentResponse) *llm.Reply {
	reply := &llm.Reply{Text: res.Text()}

	if len(res.Candidates) == 0 || res.Candidates[0] == nil {
		return reply
	}
	meta := res.Candidates[0].GroundingMetadata
	if meta == nil {
		return reply
	}

	for _, chunk := range meta.GroundingChunks {
		var src llm.Source
		if chunk != nil && chunk.Web != nil {
			src = llm.Source{URI: chunk.Web.URI, Title: chunk.Web.Title}
		}
		reply.Chunks = append(reply.Chunks, src)
	}
	return reply
}
