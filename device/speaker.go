package device

import (
	"context"
	"log"

	"github.com/gordonklaus/portaudio"

	"github.com/mrsingh-rishi/wyn-voice/audio"
	"github.com/mrsingh-rishi/wyn-voice/errs"
)

// Speaker plays decoded audio files on the default output device.
type Speaker struct {
	logger *log.Logger
}

// NewSpeaker creates a Speaker. A nil logger uses log.Default().
func NewSpeaker(logger *log.Logger) *Speaker {
	if logger == nil {
		logger = log.Default()
	}
	return &Speaker{logger: logger}
}

// Play decodes the file at path and blocks until it has been played.
func (s *Speaker) Play(ctx context.Context, path string) error {
	clip, err := audio.Decode(path)
	if err != nil {
		return err
	}
	if len(clip.Samples) == 0 {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return errs.Device(err, "initialize portaudio")
	}
	defer portaudio.Terminate()

	dev, err := portaudio.DefaultOutputDevice()
	if err != nil || dev == nil {
		return errs.Device(err, "no default output device")
	}

	buf := make([]int16, FramesPerBuffer*clip.Channels)
	stream, err := portaudio.OpenDefaultStream(0, clip.Channels, float64(clip.SampleRate), FramesPerBuffer, buf)
	if err != nil {
		return errs.Device(err, "open output stream")
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return errs.Device(err, "start output stream")
	}

	s.logger.Printf("Playing %s (%v) on %s", path, clip.Duration(), dev.Name)
	for off := 0; off < len(clip.Samples); off += len(buf) {
		select {
		case <-ctx.Done():
			stream.Abort()
			return ctx.Err()
		default:
		}

		n := copy(buf, clip.Samples[off:])
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		if err := stream.Write(); err != nil && err != portaudio.OutputUnderflowed {
			stream.Abort()
			return errs.Device(err, "write output stream")
		}
	}

	// Stop returns once queued buffers have drained.
	if err := stream.Stop(); err != nil {
		return errs.Device(err, "stop output stream")
	}
	return nil
}
