// Package stt turns recorded audio files into text using hosted recognition services.
package stt

import "context"

//go:generate mockgen -destination=../mocks/mock_transcriber.go -package=mocks github.com/mrsingh-rishi/wyn-voice/stt Transcriber

// Transcriber converts the audio file at path to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}
