// Package device talks to the default microphone and speaker through PortAudio.
//
// PortAudio is initialized and terminated around every call so no device is held
// between recordings or playbacks.
package device

import (
	"context"
	"log"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/mrsingh-rishi/wyn-voice/audio"
	"github.com/mrsingh-rishi/wyn-voice/errs"
)

// FramesPerBuffer is the PortAudio buffer size in frames.
const FramesPerBuffer = 1024

// Recorder captures fixed-length clips from the default input device.
type Recorder struct {
	logger *log.Logger
}

// NewRecorder creates a Recorder. A nil logger uses log.Default().
func NewRecorder(logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{logger: logger}
}

// Record blocks for d while capturing interleaved 16-bit samples.
func (r *Recorder) Record(ctx context.Context, d time.Duration, sampleRate, channels int) (*audio.Clip, error) {
	if d <= 0 {
		return nil, errs.Invalid("duration must be positive, got %v", d)
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, errs.Invalid("sample rate and channels must be positive, got %d/%d", sampleRate, channels)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, errs.Device(err, "initialize portaudio")
	}
	defer portaudio.Terminate()

	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil {
		return nil, errs.Device(err, "no default input device")
	}
	if dev.MaxInputChannels < channels {
		return nil, errs.Device(nil, dev.Name+" has too few input channels")
	}

	buf := make([]int16, FramesPerBuffer*channels)
	stream, err := portaudio.OpenDefaultStream(channels, 0, float64(sampleRate), FramesPerBuffer, buf)
	if err != nil {
		return nil, errs.Device(err, "open input stream")
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, errs.Device(err, "start input stream")
	}
	defer stream.Stop()

	want := audio.FramesFor(d, sampleRate) * channels
	samples := make([]int16, 0, want+len(buf))

	r.logger.Printf("Recording %v from %s (%d Hz, %d ch)", d, dev.Name, sampleRate, channels)
	for len(samples) < want {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// An overflow still leaves a full buffer of usable samples.
		if err := stream.Read(); err != nil && err != portaudio.InputOverflowed {
			return nil, errs.Device(err, "read input stream")
		}
		samples = append(samples, buf...)
	}
	r.logger.Printf("Recorded %d samples", want)

	return &audio.Clip{
		Samples:    samples[:want],
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}
