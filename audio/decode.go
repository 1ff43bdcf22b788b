package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/wyn-voice/errs"
)

// Format identifies an encoded audio container.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
)

// mp3 decoder output is always 16-bit little-endian stereo.
const mp3Channels = 2

// Sniff identifies the container from the first bytes of a file.
func Sniff(header []byte) Format {
	switch {
	case len(header) >= 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV
	case len(header) >= 3 && bytes.Equal(header[0:3], []byte("ID3")):
		return FormatMP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}

// Decode reads a WAV or MP3 file into a clip.
func Decode(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errs.PathError{Op: "decode", Path: path, Kind: errs.ErrFileNotFound, Err: err}
		}
		return nil, errors.Wrap(err, "open audio file")
	}
	defer f.Close()

	header := make([]byte, 12)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, errors.Wrap(err, "read audio header")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "rewind audio file")
	}

	var clip *Clip
	switch format := Sniff(header[:n]); format {
	case FormatWAV:
		clip, err = decodeWAV(f)
	case FormatMP3:
		clip, err = decodeMP3(f)
	default:
		err = errors.New("unrecognized container")
	}
	if err != nil {
		return nil, &errs.PathError{Op: "decode", Path: path, Kind: errs.ErrUnsupportedFormat, Err: err}
	}
	return clip, nil
}

// decodeMP3 converts go-mp3 panics on corrupt frame data into errors.
func decodeMP3(r io.Reader) (clip *Clip, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			clip, err = nil, errors.Errorf("corrupt mp3 stream: %v", rec)
		}
	}()

	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, errors.Wrap(err, "open mp3 stream")
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, errors.Wrap(err, "decode mp3 frames")
	}
	if len(raw) == 0 {
		return nil, errors.New("mp3 stream has no frames")
	}

	return &Clip{
		Samples:    pcm16LE(raw),
		SampleRate: dec.SampleRate(),
		Channels:   mp3Channels,
	}, nil
}

// pcm16LE unpacks interleaved 16-bit little-endian samples. A trailing odd byte is dropped.
func pcm16LE(raw []byte) []int16 {
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return samples
}
