// Package conversation owns the VisorX transcript and drives each user
// submission through image encoding and the remote chat session.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/visorx/pkg/i18n"
	"github.com/papercomputeco/visorx/pkg/imageenc"
	"github.com/papercomputeco/visorx/pkg/llm"
	"github.com/papercomputeco/visorx/pkg/metrics"
	"github.com/papercomputeco/visorx/pkg/transcript"
)

var (
	// ErrRejected is wrapped by every error returned for a submission that
	// was ignored without touching the transcript.
	ErrRejected = errors.New("submission rejected")

	// ErrEmpty: blank text and no image.
	ErrEmpty = rejected("empty submission")

	// ErrBusy: a previous submission is still awaiting its reply.
	ErrBusy = rejected("reply pending")

	// ErrNotReady: the session has not been started.
	ErrNotReady = rejected("session not started")
)

type rejectedError struct{ msg string }

func rejected(msg string) error { return &rejectedError{msg: msg} }

func (e *rejectedError) Error() string { return e.msg }
func (e *rejectedError) Unwrap() error { return ErrRejected }

// State is the controller's lifecycle state.
type State int

const (
	Initializing State = iota
	Idle
	AwaitingReply
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting_reply"
	default:
		return "initializing"
	}
}

// SessionClient opens the remote session and submits turns on it.
type SessionClient interface {
	StartSession(ctx context.Context) (llm.Session, error)
	SendTurn(ctx context.Context, session llm.Session, text string, image *llm.ImagePayload) (*llm.Message, error)
}

// Encoder turns a selected image into an attachment.
type Encoder interface {
	Encode(ctx context.Context, f imageenc.File) (*imageenc.Attachment, error)
}

// Submission is one user input from a view.
type Submission struct {
	Text  string
	Image imageenc.File // nil when no image is attached
}

// Result describes the transcript entries appended by a submission.
type Result struct {
	User  *transcript.Entry
	Reply *transcript.Entry
}

// Controller is the single owner of the session handle and the transcript.
type Controller struct {
	client     SessionClient
	encoder    Encoder
	transcript *transcript.Transcript
	printer    *i18n.Printer
	metrics    *metrics.Recorder
	logger     *zap.Logger

	mu       sync.Mutex
	state    State
	starting bool
	session  llm.Session
	subs     map[int]chan struct{}
	nextSub  int
}

// Options carries the optional collaborators of a Controller.
type Options struct {
	Printer *i18n.Printer     // defaults to Spanish
	Metrics *metrics.Recorder // may be nil
	Logger  *zap.Logger       // defaults to a no-op logger
}

// New creates a Controller in the Initializing state.
func New(client SessionClient, encoder Encoder, opts Options) *Controller {
	if opts.Printer == nil {
		opts.Printer = i18n.NewPrinter("")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		client:     client,
		encoder:    encoder,
		transcript: transcript.New(),
		printer:    opts.Printer,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		subs:       make(map[int]chan struct{}),
	}
}

// Start opens the remote session, appends the greeting and moves to Idle.
// On failure the controller stays Initializing and never accepts
// submissions; the caller decides how to present the error.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.starting || c.session != nil {
		c.mu.Unlock()
		return errors.New("conversation already started")
	}
	c.starting = true
	c.mu.Unlock()

	session, err := c.client.StartSession(ctx)

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.session = session
	c.transcript.Append(llm.Message{Role: llm.RoleModel, Content: c.printer.Sprintf(i18n.Greeting)})
	c.state = Idle
	c.mu.Unlock()

	c.notify()
	return nil
}

// Submit runs one turn. Blank submissions and submissions made while not
// Idle return an error wrapping ErrRejected and leave the transcript
// untouched. Every other outcome, including image and remote failures, is
// reported in the transcript and returns a nil error.
func (c *Controller) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if strings.TrimSpace(sub.Text) == "" && sub.Image == nil {
		c.metrics.Turn(metrics.OutcomeRejected, 0, 0)
		return nil, ErrEmpty
	}

	c.mu.Lock()
	switch c.state {
	case Initializing:
		c.mu.Unlock()
		c.metrics.Turn(metrics.OutcomeRejected, 0, 0)
		return nil, ErrNotReady
	case AwaitingReply:
		c.mu.Unlock()
		c.metrics.Turn(metrics.OutcomeRejected, 0, 0)
		return nil, ErrBusy
	}
	c.state = AwaitingReply
	session := c.session
	c.mu.Unlock()

	c.metrics.InFlight(true)
	c.notify()
	defer c.finish()

	// The turn outlives a caller that goes away; its reply still lands in
	// the transcript.
	ctx = context.WithoutCancel(ctx)
	log := c.logger.With(zap.String("session", session.ID()))

	user := llm.Message{Role: llm.RoleUser, Content: sub.Text}
	var image *llm.ImagePayload

	if sub.Image != nil {
		att, err := c.encoder.Encode(ctx, sub.Image)
		if err != nil {
			log.Warn("image encoding failed", zap.String("image", sub.Image.Name()), zap.Error(err))
			res := &Result{
				User:  c.transcript.Append(user),
				Reply: c.transcript.Append(llm.Message{Role: llm.RoleModel, Content: c.printer.Sprintf(i18n.ImageError)}),
			}
			c.metrics.Turn(metrics.OutcomeImageError, 0, 0)
			return res, nil
		}
		user.Image = att.DataURI
		image = &att.Payload
	}

	res := &Result{User: c.transcript.Append(user)}
	c.notify()

	start := time.Now()
	reply, err := c.client.SendTurn(ctx, session, sub.Text, image)
	elapsed := time.Since(start)

	if err != nil {
		log.Error("turn failed", zap.Error(err), zap.Duration("duration", elapsed))
		res.Reply = c.transcript.Append(llm.Message{Role: llm.RoleModel, Content: c.errorText(err)})
		c.metrics.Turn(metrics.OutcomeRemoteError, elapsed, 0)
		return res, nil
	}

	log.Info("turn completed",
		zap.Duration("duration", elapsed),
		zap.Int("sources", len(reply.Sources)),
		zap.Bool("image", image != nil),
	)
	res.Reply = c.transcript.Append(*reply)
	c.metrics.Turn(metrics.OutcomeOK, elapsed, len(reply.Sources))
	return res, nil
}

func (c *Controller) errorText(err error) string {
	detail := err.Error()
	if strings.TrimSpace(detail) == "" {
		detail = c.printer.Sprintf(i18n.UnknownError)
	}
	return c.printer.Sprintf(i18n.RemoteError, detail)
}

// finish returns to Idle exactly once per accepted submission.
func (c *Controller) finish() {
	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()

	c.metrics.InFlight(false)
	c.notify()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether the view should show a pending indicator and block
// the composer.
func (c *Controller) Loading() bool {
	return c.State() != Idle
}

// Messages returns a snapshot of the transcript, oldest first.
func (c *Controller) Messages() []llm.Message {
	return c.transcript.Messages()
}

// Entries returns a snapshot of the transcript entries, oldest first.
func (c *Controller) Entries() []*transcript.Entry {
	return c.transcript.Entries()
}

// Since returns the entries appended after hash.
func (c *Controller) Since(hash string) ([]*transcript.Entry, error) {
	return c.transcript.Since(hash)
}

// Printer returns the localizer used for transcript messages.
func (c *Controller) Printer() *i18n.Printer {
	return c.printer
}

// Subscribe returns a channel that receives a value whenever the state or
// transcript changes, and a function that cancels the subscription.
// Notifications coalesce; a slow reader sees at least the latest change.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan struct{}, 1)
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
