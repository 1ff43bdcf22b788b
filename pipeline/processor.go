// Package pipeline records speech, transcribes it, asks the chat agent for a reply and
// speaks the reply back.
//
// Every operation is a blocking, single-shot call. An AudioProcessor is not safe for
// concurrent use.
package pipeline

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/wyn-voice/audio"
	"github.com/mrsingh-rishi/wyn-voice/errs"
	"github.com/mrsingh-rishi/wyn-voice/stt"
	"github.com/mrsingh-rishi/wyn-voice/tts"
)

// DefaultOutputPath is where synthesized speech lands when no path is given.
const DefaultOutputPath = "output.mp3"

//go:generate mockgen -destination=../mocks/mock_pipeline.go -package=mocks github.com/mrsingh-rishi/wyn-voice/pipeline Agent,Recorder,Player

// Agent generates a reply to a prompt, typically *llm.ChatBot.
type Agent interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// Recorder captures a clip from an input device.
type Recorder interface {
	Record(ctx context.Context, d time.Duration, sampleRate, channels int) (*audio.Clip, error)
}

// Player plays an encoded audio file to completion.
type Player interface {
	Play(ctx context.Context, path string) error
}

// Turn is the outcome of one spoken round trip.
type Turn struct {
	Transcript string
	Reply      string
	SpeechPath string
}

// AudioProcessor glues the microphone, the speech services and the agent together.
type AudioProcessor struct {
	agent       Agent
	recorder    Recorder
	transcriber stt.Transcriber
	synthesizer tts.Synthesizer
	player      Player
	logger      *log.Logger

	duration   time.Duration
	sampleRate int
	channels   int
	outputPath string
	tempDir    string
}

// Option configures an AudioProcessor.
type Option func(*AudioProcessor)

func WithRecorder(r Recorder) Option           { return func(p *AudioProcessor) { p.recorder = r } }
func WithTranscriber(t stt.Transcriber) Option { return func(p *AudioProcessor) { p.transcriber = t } }
func WithSynthesizer(s tts.Synthesizer) Option { return func(p *AudioProcessor) { p.synthesizer = s } }
func WithPlayer(pl Player) Option              { return func(p *AudioProcessor) { p.player = pl } }
func WithLogger(l *log.Logger) Option          { return func(p *AudioProcessor) { p.logger = l } }

// WithRecordingFormat sets the defaults used by VoiceToText. Zero values keep the current ones.
func WithRecordingFormat(d time.Duration, sampleRate, channels int) Option {
	return func(p *AudioProcessor) {
		if d > 0 {
			p.duration = d
		}
		if sampleRate > 0 {
			p.sampleRate = sampleRate
		}
		if channels > 0 {
			p.channels = channels
		}
	}
}

// WithOutputPath sets the default destination of synthesized speech.
func WithOutputPath(path string) Option {
	return func(p *AudioProcessor) {
		if path != "" {
			p.outputPath = path
		}
	}
}

// WithTempDir sets where intermediate recordings are written. Empty means os.TempDir().
func WithTempDir(dir string) Option { return func(p *AudioProcessor) { p.tempDir = dir } }

// NewAudioProcessor wires the collaborators. Agent, recorder, transcriber, synthesizer and
// player are all required.
func NewAudioProcessor(agent Agent, opts ...Option) (*AudioProcessor, error) {
	p := &AudioProcessor{
		agent:      agent,
		duration:   audio.DefaultDuration,
		sampleRate: audio.DefaultSampleRate,
		channels:   audio.DefaultChannels,
		outputPath: DefaultOutputPath,
	}
	for _, opt := range opts {
		opt(p)
	}

	switch {
	case p.agent == nil:
		return nil, errors.New("agent is required")
	case p.recorder == nil:
		return nil, errors.New("recorder is required")
	case p.transcriber == nil:
		return nil, errors.New("transcriber is required")
	case p.synthesizer == nil:
		return nil, errors.New("synthesizer is required")
	case p.player == nil:
		return nil, errors.New("player is required")
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	return p, nil
}

// OutputPath returns the default destination of synthesized speech.
func (p *AudioProcessor) OutputPath() string {
	return p.outputPath
}

// RecordAudio blocks for duration while capturing from the default input device.
func (p *AudioProcessor) RecordAudio(ctx context.Context, duration time.Duration, sampleRate, channels int) (*audio.Clip, error) {
	if duration <= 0 {
		return nil, errs.Invalid("duration must be positive, got %v", duration)
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, errs.Invalid("sample rate and channels must be positive, got %d/%d", sampleRate, channels)
	}

	p.logger.Println("Recording audio...")
	clip, err := p.recorder.Record(ctx, duration, sampleRate, channels)
	if err != nil {
		return nil, err
	}
	p.logger.Println("Audio recorded!")
	return clip, nil
}

// VoiceToText records a clip with the default format and returns its transcription.
// The intermediate WAV file is removed on every path out of this call.
func (p *AudioProcessor) VoiceToText(ctx context.Context) (string, error) {
	clip, err := p.RecordAudio(ctx, p.duration, p.sampleRate, p.channels)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(p.tempDir, "voice-*.wav")
	if err != nil {
		return "", errors.Wrap(err, "create temp recording")
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			p.logger.Printf("Failed to remove %s: %v", path, rmErr)
		}
	}()

	if err := audio.EncodeWAV(f, clip); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "close temp recording")
	}

	return p.transcriber.Transcribe(ctx, path)
}

// TextToVoice synthesizes text and writes it to outputPath (the default when empty).
// The audio is buffered completely and renamed into place, so a failure never leaves a
// partially written file at outputPath.
func (p *AudioProcessor) TextToVoice(ctx context.Context, text, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = p.outputPath
	}

	data, err := p.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	if err := writeFileAtomic(outputPath, data); err != nil {
		return "", err
	}
	p.logger.Printf("Speech saved to %s", outputPath)
	return outputPath, nil
}

// PlayAudio plays the file at path and returns once playback has finished.
func (p *AudioProcessor) PlayAudio(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &errs.PathError{Op: "play", Path: path, Kind: errs.ErrFileNotFound, Err: err}
		}
		return errors.Wrap(err, "stat audio file")
	}
	return p.player.Play(ctx, path)
}

// ProcessAudioAndGenerateResponse records a question and returns the agent's answer.
func (p *AudioProcessor) ProcessAudioAndGenerateResponse(ctx context.Context) (string, error) {
	text, err := p.VoiceToText(ctx)
	if err != nil {
		return "", err
	}
	p.logger.Printf("Heard: %q", text)
	return p.agent.GenerateResponse(ctx, text)
}

// Speak synthesizes text to the default output path and plays it.
func (p *AudioProcessor) Speak(ctx context.Context, text string) (string, error) {
	path, err := p.TextToVoice(ctx, text, "")
	if err != nil {
		return "", err
	}
	return path, p.PlayAudio(ctx, path)
}

// Converse runs a full round trip: listen, answer, speak the answer.
// The returned Turn carries whatever was completed when an error occurs.
func (p *AudioProcessor) Converse(ctx context.Context) (*Turn, error) {
	turn := &Turn{}

	text, err := p.VoiceToText(ctx)
	if err != nil {
		return turn, err
	}
	turn.Transcript = text
	p.logger.Printf("Heard: %q", text)

	reply, err := p.agent.GenerateResponse(ctx, text)
	if err != nil {
		return turn, err
	}
	turn.Reply = reply
	p.logger.Printf("Reply: %q", reply)

	path, err := p.Speak(ctx, reply)
	turn.SpeechPath = path
	return turn, err
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp output")
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, "chmod output")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, "write output")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "close output")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "move output into place")
	}
	return nil
}
