package llm

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/wyn-voice/errs"
	"github.com/mrsingh-rishi/wyn-voice/model"
)

const (
	DefaultModel        = openai.GPT3Dot5Turbo
	DefaultInstructions = "You are a helpful assistant"
)

//go:generate mockgen -destination=../mocks/mock_completer.go -package=mocks github.com/mrsingh-rishi/wyn-voice/llm Completer

// Completer is the part of the OpenAI client the chat bot needs. *openai.Client satisfies it.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatBot keeps a linear conversation transcript and asks a chat-completion model for replies.
// It is not safe for concurrent use.
type ChatBot struct {
	client       Completer
	model        string
	instructions string
	history      []model.Message
	logger       *log.Logger
}

// Option configures a ChatBot.
type Option func(*options)

type options struct {
	model        string
	instructions string
	baseURL      string
	client       Completer
	logger       *log.Logger
}

// WithModel selects the completion model. Empty keeps the default.
func WithModel(name string) Option {
	return func(o *options) { o.model = name }
}

// WithInstructions sets the system instructions sent ahead of the transcript.
// An empty string sends no system message.
func WithInstructions(text string) Option {
	return func(o *options) { o.instructions = text }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithCompleter replaces the OpenAI client.
func WithCompleter(c Completer) Option {
	return func(o *options) { o.client = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a ChatBot authenticated with apiKey.
func New(apiKey string, opts ...Option) (*ChatBot, error) {
	if err := ValidateAPIKey(apiKey); err != nil {
		return nil, err
	}

	o := options{
		model:        DefaultModel,
		instructions: DefaultInstructions,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.model == "" {
		o.model = DefaultModel
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.client == nil {
		o.client = NewOpenAIClient(apiKey, o.baseURL)
	}

	return &ChatBot{
		client:       o.client,
		model:        o.model,
		instructions: o.instructions,
		logger:       o.logger,
	}, nil
}

// NewOpenAIClient builds a go-openai client, optionally against a custom base URL.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// ValidateAPIKey rejects empty keys and keys containing whitespace or control characters.
func ValidateAPIKey(apiKey string) error {
	if apiKey == "" {
		return errors.Wrap(errs.ErrInvalidCredentials, "API key is required")
	}
	for _, r := range apiKey {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return errors.Wrap(errs.ErrInvalidCredentials, "API key is malformed")
		}
	}
	return nil
}

// GenerateResponse sends the transcript plus prompt to the model and returns the reply.
// The user and assistant entries are appended only when the request succeeds.
func (c *ChatBot) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errs.Invalid("prompt is empty")
	}

	user := model.Message{Role: model.RoleUser, Content: prompt}
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: c.requestMessages(user),
	}

	c.logger.Printf("Sending %d messages to %s", len(req.Messages), c.model)
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errs.Remote("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", errs.Remote("chat completion", errors.New("response has no choices"))
	}

	reply := resp.Choices[0].Message.Content
	c.history = append(c.history, user, model.Message{Role: model.RoleAssistant, Content: reply})
	c.logger.Printf("Received reply from %s in %v (%d chars)", c.model, time.Since(start).Round(time.Millisecond), len(reply))

	return reply, nil
}

func (c *ChatBot) requestMessages(next model.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(c.history)+2)
	if c.instructions != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.instructions})
	}
	for _, m := range c.history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: string(next.Role), Content: next.Content})
}

// History returns a copy of the transcript in insertion order.
func (c *ChatBot) History() []model.Message {
	out := make([]model.Message, len(c.history))
	copy(out, c.history)
	return out
}

// Instructions returns the system instructions.
func (c *ChatBot) Instructions() string {
	return c.instructions
}

// Model returns the completion model identifier.
func (c *ChatBot) Model() string {
	return c.model
}
