// Package server exposes one agent and its audio pipeline over HTTP.
package server

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/wyn-voice/errs"
	"github.com/mrsingh-rishi/wyn-voice/model"
)

const RequestIDHeader = "X-Request-ID"

//go:generate mockgen -destination=../mocks/mock_server.go -package=mocks github.com/mrsingh-rishi/wyn-voice/server Chat,Voice

// Chat is the conversational agent, typically *llm.ChatBot.
type Chat interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
	History() []model.Message
}

// Voice is the audio pipeline, typically *pipeline.AudioProcessor.
type Voice interface {
	TextToVoice(ctx context.Context, text, outputPath string) (string, error)
	ProcessAudioAndGenerateResponse(ctx context.Context) (string, error)
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

type speechRequest struct {
	Text string `json:"text"`
}

// Server serializes every request that touches the agent or the pipeline,
// since neither is safe for concurrent use.
type Server struct {
	app       *fiber.App
	mu        sync.Mutex
	chat      Chat
	voice     Voice
	outputDir string
	logger    *log.Logger
}

// New builds the routes. voice may be nil, in which case the audio routes answer 501.
func New(chat Chat, voice Voice, outputDir string, logger *log.Logger) (*Server, error) {
	if chat == nil {
		return nil, errors.New("chat is required")
	}
	if outputDir == "" {
		outputDir = "."
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{chat: chat, voice: voice, outputDir: outputDir, logger: logger}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(requestID)
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Post("/chat", s.handleChat)
	s.app.Get("/history", s.handleHistory)
	s.app.Post("/speech", s.handleSpeech)
	s.app.Post("/listen", s.handleListen)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleSocket))

	return s, nil
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Printf("Server listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func requestID(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("requestID", id)
	c.Set(RequestIDHeader, id)
	return c.Next()
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Invalid("invalid JSON: %v", err)
	}

	s.mu.Lock()
	reply, err := s.chat.GenerateResponse(c.UserContext(), req.Prompt)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return c.JSON(chatResponse{Reply: reply})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	s.mu.Lock()
	history := s.chat.History()
	s.mu.Unlock()
	if history == nil {
		history = []model.Message{}
	}
	return c.JSON(history)
}

func (s *Server) handleSpeech(c *fiber.Ctx) error {
	if s.voice == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "voice pipeline is disabled")
	}
	var req speechRequest
	if err := c.BodyParser(&req); err != nil {
		return errs.Invalid("invalid JSON: %v", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return errs.Invalid("`text` field is required")
	}

	target := filepath.Join(s.outputDir, uuid.NewString()+".mp3")
	s.mu.Lock()
	path, err := s.voice.TextToVoice(c.UserContext(), req.Text, target)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	// The file only exists to hand the audio to the client.
	data, err := os.ReadFile(path)
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		s.logger.Printf("Failed to remove %s: %v", path, rmErr)
	}
	if err != nil {
		return errors.Wrap(err, "read synthesized speech")
	}
	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(data)
}

func (s *Server) handleListen(c *fiber.Ctx) error {
	if s.voice == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "voice pipeline is disabled")
	}
	s.mu.Lock()
	reply, err := s.voice.ProcessAudioAndGenerateResponse(c.UserContext())
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return c.JSON(chatResponse{Reply: reply})
}

// handleSocket answers each {"prompt"} frame with a {"reply"} or {"error"} frame.
func (s *Server) handleSocket(ws *websocket.Conn) {
	defer ws.Close()
	s.logger.Println("WebSocket /ws connected")

	for {
		var req chatRequest
		if err := ws.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("WebSocket read error: %v", err)
			}
			return
		}

		s.mu.Lock()
		reply, err := s.chat.GenerateResponse(context.Background(), req.Prompt)
		s.mu.Unlock()

		resp := chatResponse{Reply: reply}
		if err != nil {
			resp = chatResponse{Error: err.Error()}
		}
		if err := ws.WriteJSON(resp); err != nil {
			s.logger.Printf("WebSocket write error: %v", err)
			return
		}
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	id, _ := c.Locals("requestID").(string)
	if code >= fiber.StatusInternalServerError {
		s.logger.Printf("[%s] %s %s: %v", id, c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(chatResponse{Error: err.Error()})
}

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, errs.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, errs.ErrFileNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errs.ErrUnsupportedFormat):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, errs.ErrDeviceUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, errs.ErrRemoteService):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
