package stt

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/wyn-voice/errs"
)

// DefaultOpenAIModel is the hosted Whisper model.
const DefaultOpenAIModel = openai.Whisper1

// OpenAITranscriber uploads audio files to the OpenAI transcription endpoint.
type OpenAITranscriber struct {
	Client *openai.Client
	Model  string
	Logger *log.Logger
}

// NewOpenAITranscriber creates a transcriber sharing an existing OpenAI client.
func NewOpenAITranscriber(client *openai.Client, model string, logger *log.Logger) *OpenAITranscriber {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OpenAITranscriber{Client: client, Model: model, Logger: logger}
}

// Transcribe uploads the file and returns the recognized text.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	t.Logger.Printf("Transcribing audio from: %s", path)
	start := time.Now()

	resp, err := t.Client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.Model,
		FilePath: path,
	})
	if err != nil {
		return "", errs.Remote("transcription", err)
	}

	text := strings.TrimSpace(resp.Text)
	t.Logger.Printf("Transcription: %q (%v)", text, time.Since(start).Round(time.Millisecond))
	return text, nil
}
