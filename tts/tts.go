// Package tts turns text into encoded speech using hosted synthesis services.
package tts

import "context"

//go:generate mockgen -destination=../mocks/mock_synthesizer.go -package=mocks github.com/mrsingh-rishi/wyn-voice/tts Synthesizer

// Synthesizer returns the complete encoded audio (MP3) for text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
