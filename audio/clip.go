// Package audio holds captured clips and the codecs used to move them through files.
package audio

import "time"

const (
	// DefaultSampleRate is what the transcription services expect.
	DefaultSampleRate = 16000
	// DefaultChannels records mono.
	DefaultChannels = 1
	// DefaultDuration is the length of a voice prompt.
	DefaultDuration = 3 * time.Second
	// BitDepth of every clip; samples are signed 16-bit PCM.
	BitDepth = 16
)

// Clip is a buffer of interleaved 16-bit samples.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playback length of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// FramesFor returns how many frames cover d at the given rate, rounded up.
func FramesFor(d time.Duration, sampleRate int) int {
	n := (int64(d)*int64(sampleRate) + int64(time.Second) - 1) / int64(time.Second)
	return int(n)
}
