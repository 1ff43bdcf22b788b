// Package errs defines the error kinds surfaced by the agent and the audio pipeline.
//
// Callers match kinds with errors.Is; the concrete types carry the details.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrInvalidCredentials is returned when an API key is missing or malformed at construction.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRemoteService covers any failure of a hosted completion, transcription or synthesis API.
	ErrRemoteService = errors.New("remote service error")
	// ErrDeviceUnavailable is returned when no usable audio device can be opened.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrFileNotFound is returned when an audio file to play does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned when an audio file cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrInvalidArgument is returned for empty prompts, non-positive durations and the like.
	ErrInvalidArgument = errors.New("invalid argument")
)

// RemoteServiceError wraps a failure reported by (or while reaching) a hosted API.
type RemoteServiceError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRemoteService.
func (e *RemoteServiceError) Is(target error) bool { return target == ErrRemoteService }

// Remote wraps err as a RemoteServiceError for the named service. HTTP status codes are
// lifted from go-openai errors when present. A nil err returns nil.
func Remote(service string, err error) error {
	if err == nil {
		return nil
	}
	var existing *RemoteServiceError
	if errors.As(err, &existing) {
		return err
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return &RemoteServiceError{Service: service, StatusCode: status, Err: err}
}

// RemoteStatus builds a RemoteServiceError from a non-2xx HTTP response.
func RemoteStatus(service string, status int, body string) error {
	return &RemoteServiceError{
		Service:    service,
		StatusCode: status,
		Err:        errors.Errorf("unexpected response: %s", body),
	}
}

// PathError records a file-kind failure for a path.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// Is matches the error kind as well as anything in the wrapped chain.
func (e *PathError) Is(target error) bool { return target == e.Kind }

// Invalid returns an ErrInvalidArgument carrying the given message.
func Invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// Device wraps a device failure as ErrDeviceUnavailable.
func Device(err error, msg string) error {
	if err == nil {
		return errors.Wrap(ErrDeviceUnavailable, msg)
	}
	return errors.Wrap(&deviceError{err: err}, msg)
}

type deviceError struct{ err error }

func (e *deviceError) Error() string        { return fmt.Sprintf("%v: %v", ErrDeviceUnavailable, e.err) }
func (e *deviceError) Unwrap() error        { return e.err }
func (e *deviceError) Is(target error) bool { return target == ErrDeviceUnavailable }
