package audio

import (
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

const wavFormatPCM = 1

// EncodeWAV writes clip to w as 16-bit PCM WAV.
func EncodeWAV(w io.WriteSeeker, clip *Clip) error {
	if clip == nil || clip.SampleRate <= 0 || clip.Channels <= 0 {
		return errors.New("encode wav: clip has no format")
	}

	data := make([]int, len(clip.Samples))
	for i, s := range clip.Samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(w, clip.SampleRate, BitDepth, clip.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: clip.Channels,
			SampleRate:  clip.SampleRate,
		},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errors.Wrap(err, "encode wav")
	}
	return errors.Wrap(enc.Close(), "finalize wav")
}

// WriteWAVFile encodes clip into a new file at path.
func WriteWAVFile(path string, clip *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create wav file")
	}
	if err := EncodeWAV(f, clip); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close wav file")
}

func decodeWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav header")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, errors.Errorf("wav audio format %d is not PCM", dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "read wav samples")
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch dec.BitDepth {
		case 8:
			samples[i] = int16((v - 128) << 8)
		case 16:
			samples[i] = int16(v)
		case 24:
			samples[i] = int16(v >> 8)
		case 32:
			samples[i] = int16(v >> 16)
		default:
			return nil, errors.Errorf("unsupported bit depth %d", dec.BitDepth)
		}
	}

	return &Clip{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}
