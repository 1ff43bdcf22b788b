package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/wyn-voice/errs"
)

const (
	DefaultElevenLabsURL     = "https://api.elevenlabs.io"
	DefaultElevenLabsModel   = "eleven_multilingual_v2"
	DefaultElevenLabsVoice   = "JBFqnCBsd6RMkjVDRZzb"
	elevenLabsOutputFormat   = "mp3_44100_128"
	elevenLabsMaxErrorLength = 512
)

type ElevenLabsClient struct {
	APIKey     string
	VoiceId    string
	ModelId    string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

func NewElevenLabsClient(apiKey string, voiceId string, modelId string, logger *log.Logger) (*ElevenLabsClient, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errs.ErrInvalidCredentials, "ElevenLabs API key is required")
	}
	if voiceId == "" {
		voiceId = DefaultElevenLabsVoice
	}
	if modelId == "" {
		modelId = DefaultElevenLabsModel
	}
	if logger == nil {
		logger = log.Default()
	}

	return &ElevenLabsClient{
		APIKey:     apiKey,
		VoiceId:    voiceId,
		ModelId:    modelId,
		BaseURL:    DefaultElevenLabsURL,
		HTTPClient: http.DefaultClient,
		Logger:     logger,
	}, nil
}

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings map[string]float64 `json:"voice_settings"`
}

// Synthesize returns the MP3 rendition of text, buffered fully in memory.
func (client *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errs.Invalid("text is empty")
	}

	base, err := url.Parse(fmt.Sprintf("%s/v1/text-to-speech/%s", client.BaseURL, url.PathEscape(client.VoiceId)))
	if err != nil {
		return nil, errors.Wrap(err, "build elevenlabs url")
	}
	q := base.Query()
	q.Set("output_format", elevenLabsOutputFormat)
	base.RawQuery = q.Encode()

	bodyBytes, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: client.ModelId,
		VoiceSettings: map[string]float64{
			"stability":        0.75,
			"similarity_boost": 0.7,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.String(), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("xi-api-key", client.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := client.HTTPClient.Do(req)
	if err != nil {
		return nil, errs.Remote("elevenlabs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, elevenLabsMaxErrorLength))
		return nil, errs.RemoteStatus("elevenlabs", resp.StatusCode, string(msg))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Remote("elevenlabs", errors.Wrap(err, "read audio"))
	}
	if len(data) == 0 {
		return nil, errs.Remote("elevenlabs", errors.New("empty audio response"))
	}

	client.Logger.Printf("ElevenLabs synthesized %d chars into %d bytes", len(text), len(data))
	return data, nil
}
