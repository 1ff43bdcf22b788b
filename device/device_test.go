package device

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsingh-rishi/wyn-voice/errs"
)

var quiet = log.New(io.Discard, "", 0)

func TestRecorder_RejectsInvalidArguments(t *testing.T) {
	r := NewRecorder(quiet)

	_, err := r.Record(context.Background(), 0, 16000, 1)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = r.Record(context.Background(), time.Second, 0, 1)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = r.Record(context.Background(), time.Second, 16000, -1)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}

func TestSpeaker_FileErrorsBeforeOpeningDevice(t *testing.T) {
	s := NewSpeaker(quiet)
	dir := t.TempDir()

	err := s.Play(context.Background(), filepath.Join(dir, "missing.mp3"))
	assert.True(t, errors.Is(err, errs.ErrFileNotFound))

	bogus := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bogus, []byte("not audio"), 0o644))
	err = s.Play(context.Background(), bogus)
	assert.True(t, errors.Is(err, errs.ErrUnsupportedFormat))
}
