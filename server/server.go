// Package server provides the VisorX web front end: a single chat page and
// a small JSON API over the conversation controller.
package server

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/visorx/pkg/conversation"
	"github.com/papercomputeco/visorx/pkg/imageenc"
	"github.com/papercomputeco/visorx/pkg/llm"
	"github.com/papercomputeco/visorx/pkg/transcript"
)

const requestIDHeader = "X-Request-ID"

// Server serves the chat page and API for one conversation.
type Server struct {
	config Config
	ctrl   *conversation.Controller
	logger *zap.Logger
	server *fiber.App
}

// New creates a new Server.
func New(config Config, ctrl *conversation.Controller, logger *zap.Logger) (*Server, error) {
	if ctrl == nil {
		return nil, errors.New("server: conversation controller is required")
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		// LLM turns with images can be slow
		ReadTimeout: 5 * time.Minute,
	})

	s := &Server{
		config: config,
		ctrl:   ctrl,
		logger: logger,
		server: app,
	}

	app.Use(s.requestLogger)

	// Page
	app.Get("/", s.handleIndex)
	app.Post("/chat", s.handleChat)

	// JSON API
	app.Get("/api/messages", s.handleMessages)
	app.Get("/api/state", s.handleState)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{})))

	return s, nil
}

// Run starts the server on the configured listening address
func (s *Server) Run() error {
	s.logger.Info("starting web server", zap.String("listen", s.config.ListenAddr))
	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener starts the server on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting web server", zap.String("listen", ln.Addr().String()))
	return s.server.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.server.Shutdown()
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.server
}

// requestLogger tags every request with an id and logs its outcome.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDHeader, id)
	c.Locals("logger", s.logger.With(zap.String("request_id", id)))

	err := c.Next()

	s.logger.Debug("request",
		zap.String("request_id", id),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

func (s *Server) log(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals("logger").(*zap.Logger); ok {
		return l
	}
	return s.logger
}

// handleIndex renders the transcript and composer.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := renderPage(&buf, s.ctrl); err != nil {
		s.log(c).Error("failed to render page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set("Cache-Control", "no-store")
	return c.Send(buf.Bytes())
}

// ChatResponse is the JSON reply of POST /chat.
type ChatResponse struct {
	User  *transcript.Entry `json:"user"`
	Reply *transcript.Entry `json:"reply"`
}

// handleChat accepts a composer submission (multipart or urlencoded form with
// "message" and an optional "image" file) and runs the turn synchronously.
// Browsers are redirected back to the page; API clients asking for JSON get
// the appended entries.
func (s *Server) handleChat(c *fiber.Ctx) error {
	// FormValue aliases the pooled request buffer; the transcript keeps the
	// text beyond this request.
	sub := conversation.Submission{Text: utils.CopyString(c.FormValue("message"))}

	if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
		sub.Image = imageenc.FromMultipart(fh)
	}

	res, err := s.ctrl.Submit(c.UserContext(), sub)
	if err != nil {
		status := fiber.StatusBadRequest
		switch {
		case errors.Is(err, conversation.ErrBusy):
			status = fiber.StatusConflict
		case errors.Is(err, conversation.ErrNotReady):
			status = fiber.StatusServiceUnavailable
		}
		s.log(c).Debug("submission rejected", zap.Error(err))

		if wantsJSON(c) {
			return c.Status(status).JSON(llm.ErrorResponse{Error: err.Error()})
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	if wantsJSON(c) {
		return c.JSON(ChatResponse{User: res.User, Reply: res.Reply})
	}
	return c.Redirect("/#m-"+res.Reply.Hash, fiber.StatusSeeOther)
}

// MessagesResponse is the JSON reply of GET /api/messages.
type MessagesResponse struct {
	State   string              `json:"state"`
	Loading bool                `json:"loading"`
	Entries []*transcript.Entry `json:"entries"`
}

// handleMessages returns the transcript, or the entries after ?since=<hash>.
func (s *Server) handleMessages(c *fiber.Ctx) error {
	entries, err := s.ctrl.Since(c.Query("since"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "entry not found"})
	}

	return c.JSON(MessagesResponse{
		State:   s.ctrl.State().String(),
		Loading: s.ctrl.Loading(),
		Entries: entries,
	})
}

func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(map[string]any{
		"state":   s.ctrl.State().String(),
		"loading": s.ctrl.Loading(),
		"count":   len(s.ctrl.Entries()),
	})
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}
