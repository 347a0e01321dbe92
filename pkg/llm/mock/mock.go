// Package mock is an offline llm.Provider for local development and tests.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/papercomputeco/visorx/pkg/llm"
)

// Provider echoes every turn back. Set SendFunc or StartErr to script other
// behavior.
type Provider struct {
	// SendFunc replaces the echo reply when set.
	SendFunc func(ctx context.Context, parts []llm.Part) (*llm.Reply, error)

	// StartErr makes StartSession fail.
	StartErr error

	starts atomic.Int64
	sends  atomic.Int64

	mu    sync.Mutex
	turns [][]llm.Part
}

// New creates an echoing Provider.
func New() *Provider {
	return &Provider{}
}

type session struct {
	id string
}

func (s *session) ID() string { return s.id }

func (p *Provider) StartSession(_ context.Context, cfg llm.SessionConfig) (llm.Session, error) {
	if p.StartErr != nil {
		return nil, p.StartErr
	}
	n := p.starts.Add(1)
	return &session{id: fmt.Sprintf("mock-%s-%d", cfg.Model, n)}, nil
}

func (p *Provider) Send(ctx context.Context, s llm.Session, parts []llm.Part) (*llm.Reply, error) {
	if _, ok := s.(*session); !ok {
		return nil, fmt.Errorf("mock: foreign session %T", s)
	}
	p.sends.Add(1)

	p.mu.Lock()
	p.turns = append(p.turns, parts)
	p.mu.Unlock()

	if p.SendFunc != nil {
		return p.SendFunc(ctx, parts)
	}
	return echo(parts), nil
}

// Sends returns how many turns reached the provider.
func (p *Provider) Sends() int {
	return int(p.sends.Load())
}

// Turns returns the parts of every turn received, oldest first.
func (p *Provider) Turns() [][]llm.Part {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]llm.Part, len(p.turns))
	copy(out, p.turns)
	return out
}

func echo(parts []llm.Part) *llm.Reply {
	var b strings.Builder
	b.WriteString("### Modo local\n\n")
	for _, part := range parts {
		switch {
		case part.InlineData != nil:
			fmt.Fprintf(&b, "* Imagen recibida (**%s**)\n", part.InlineData.MIMEType)
		default:
			fmt.Fprintf(&b, "* Dijiste: *%s*\n", part.Text)
		}
	}
	b.WriteString("\nEsta información es para fines educativos y no constituye una recomendación de inversión.")

	return &llm.Reply{
		Text: b.String(),
		Chunks: []llm.Source{
			{URI: "https://ai.google.dev/gemini-api/docs/google-search", Title: ""},
		},
	}
}
