package tts

import (
	"context"
	"io"
	"log"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/mrsingh-rishi/wyn-voice/errs"
)

const (
	DefaultOpenAIModel = openai.TTSModel1
	DefaultOpenAIVoice = openai.VoiceAlloy
)

// OpenAISynthesizer calls the OpenAI speech endpoint.
type OpenAISynthesizer struct {
	Client *openai.Client
	Model  openai.SpeechModel
	Voice  openai.SpeechVoice
	Logger *log.Logger
}

// NewOpenAISynthesizer creates a synthesizer sharing an existing OpenAI client.
func NewOpenAISynthesizer(client *openai.Client, model, voice string, logger *log.Logger) *OpenAISynthesizer {
	s := &OpenAISynthesizer{
		Client: client,
		Model:  DefaultOpenAIModel,
		Voice:  DefaultOpenAIVoice,
		Logger: logger,
	}
	if model != "" {
		s.Model = openai.SpeechModel(model)
	}
	if voice != "" {
		s.Voice = openai.SpeechVoice(voice)
	}
	if s.Logger == nil {
		s.Logger = log.Default()
	}
	return s
}

// Synthesize returns MP3 bytes for text.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errs.Invalid("text is empty")
	}

	resp, err := s.Client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.Model,
		Input:          text,
		Voice:          s.Voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, errs.Remote("speech", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, errs.Remote("speech", errors.Wrap(err, "read speech body"))
	}
	if len(data) == 0 {
		return nil, errs.Remote("speech", errors.New("empty audio response"))
	}

	s.Logger.Printf("Synthesized %d chars into %d bytes with %s/%s", len(text), len(data), s.Model, s.Voice)
	return data, nil
}
