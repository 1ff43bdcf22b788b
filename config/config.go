// Package config loads runtime settings from the environment (and an optional .env file).
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	ProviderOpenAI     = "openai"
	ProviderDeepgram   = "deepgram"
	ProviderElevenLabs = "elevenlabs"
)

// Config holds everything the CLI needs to build the agent, the pipeline and the server.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ChatModel     string
	SystemPrompt  string

	STTProvider        string
	TranscriptionModel string
	DeepgramAPIKey     string

	TTSProvider       string
	TTSModel          string
	TTSVoice          string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	RecordDuration time.Duration
	SampleRate     int
	Channels       int
	OutputPath     string

	ServerAddr string
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		ChatModel:          "gpt-3.5-turbo",
		SystemPrompt:       "You are a helpful assistant",
		STTProvider:        ProviderOpenAI,
		TranscriptionModel: "whisper-1",
		TTSProvider:        ProviderOpenAI,
		TTSModel:           "tts-1",
		TTSVoice:           "alloy",
		ElevenLabsVoiceID:  "JBFqnCBsd6RMkjVDRZzb",
		ElevenLabsModelID:  "eleven_multilingual_v2",
		RecordDuration:     3 * time.Second,
		SampleRate:         16000,
		Channels:           1,
		OutputPath:         "output.mp3",
		ServerAddr:         ":3000",
	}
}

// Load reads .env if present and overlays environment variables on Default.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}
	return FromEnv()
}

// FromEnv overlays environment variables on Default without touching .env.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	setString(&cfg.ChatModel, "CHAT_MODEL")
	setString(&cfg.SystemPrompt, "SYSTEM_PROMPT")

	setString(&cfg.STTProvider, "STT_PROVIDER")
	setString(&cfg.TranscriptionModel, "TRANSCRIPTION_MODEL")
	cfg.DeepgramAPIKey = os.Getenv("DEEPGRAM_API_KEY")

	setString(&cfg.TTSProvider, "TTS_PROVIDER")
	setString(&cfg.TTSModel, "TTS_MODEL")
	setString(&cfg.TTSVoice, "TTS_VOICE")
	cfg.ElevenLabsAPIKey = os.Getenv("ELEVEN_LABS_API_KEY")
	setString(&cfg.ElevenLabsVoiceID, "ELEVEN_LABS_VOICE_ID")
	setString(&cfg.ElevenLabsModelID, "ELEVEN_LABS_MODEL_ID")

	if v := os.Getenv("RECORD_SECONDS"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errors.Wrap(err, "parse RECORD_SECONDS")
		}
		cfg.RecordDuration = time.Duration(secs * float64(time.Second))
	}
	if err := setInt(&cfg.SampleRate, "SAMPLE_RATE"); err != nil {
		return cfg, err
	}
	if err := setInt(&cfg.Channels, "CHANNELS"); err != nil {
		return cfg, err
	}
	setString(&cfg.OutputPath, "OUTPUT_PATH")
	setString(&cfg.ServerAddr, "SERVER_ADDR")

	cfg.STTProvider = strings.ToLower(cfg.STTProvider)
	cfg.TTSProvider = strings.ToLower(cfg.TTSProvider)

	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY must be set")
	}

	switch c.STTProvider {
	case ProviderOpenAI:
	case ProviderDeepgram:
		if c.DeepgramAPIKey == "" {
			return errors.New("DEEPGRAM_API_KEY must be set when STT_PROVIDER=deepgram")
		}
	default:
		return errors.Errorf("unknown STT_PROVIDER %q (supported: openai, deepgram)", c.STTProvider)
	}

	switch c.TTSProvider {
	case ProviderOpenAI:
	case ProviderElevenLabs:
		if c.ElevenLabsAPIKey == "" {
			return errors.New("ELEVEN_LABS_API_KEY must be set when TTS_PROVIDER=elevenlabs")
		}
	default:
		return errors.Errorf("unknown TTS_PROVIDER %q (supported: openai, elevenlabs)", c.TTSProvider)
	}

	if c.RecordDuration <= 0 {
		return errors.New("RECORD_SECONDS must be positive")
	}
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return errors.New("SAMPLE_RATE and CHANNELS must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "parse %s", key)
	}
	*dst = n
	return nil
}
