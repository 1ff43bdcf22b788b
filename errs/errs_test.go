package errs

import (
	"io/fs"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemote_LiftsOpenAIStatus(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limited"}

	err := Remote("chat completion", errors.Wrap(apiErr, "create"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemoteService))

	var remote *RemoteServiceError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusTooManyRequests, remote.StatusCode)
	assert.Equal(t, "chat completion", remote.Service)
	assert.Contains(t, err.Error(), "status 429")
}

func TestRemote_RequestError(t *testing.T) {
	reqErr := &openai.RequestError{HTTPStatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}

	var remote *RemoteServiceError
	require.True(t, errors.As(Remote("speech", reqErr), &remote))
	assert.Equal(t, http.StatusBadGateway, remote.StatusCode)
}

func TestRemote_NilAndIdempotent(t *testing.T) {
	assert.NoError(t, Remote("x", nil))

	first := Remote("transcription", errors.New("connection refused"))
	second := Remote("other", first)
	assert.Same(t, first, second)
}

func TestPathError_MatchesKindAndCause(t *testing.T) {
	err := &PathError{Op: "play", Path: "/tmp/missing.mp3", Kind: ErrFileNotFound, Err: fs.ErrNotExist}

	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "/tmp/missing.mp3")
}

func TestDeviceAndInvalid(t *testing.T) {
	assert.True(t, errors.Is(Device(nil, "no input device"), ErrDeviceUnavailable))

	cause := errors.New("portaudio: Invalid device")
	err := Device(cause, "open input stream")
	assert.True(t, errors.Is(err, ErrDeviceUnavailable))
	assert.True(t, errors.Is(err, cause))

	assert.True(t, errors.Is(Invalid("duration must be positive, got %v", 0), ErrInvalidArgument))
}
