package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mrsingh-rishi/wyn-voice/errs"
)

const (
	DefaultDeepgramEndpoint = "wss://api.deepgram.com/v1/listen"
	DefaultDeepgramModel    = "nova-2"

	deepgramChunkSize   = 8 * 1024
	deepgramReadTimeout = 30 * time.Second
)

// TranscriptionMessage represents a Results message from Deepgram.
type TranscriptionMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// DeepgramTranscriber streams one audio file over a Deepgram live connection and
// collects the final transcript segments.
type DeepgramTranscriber struct {
	APIKey   string
	Endpoint string
	Model    string
	Language string
	Logger   *log.Logger
	Dialer   *websocket.Dialer
}

// NewDeepgramClient creates a transcriber with the default endpoint and model.
func NewDeepgramClient(apiKey string, logger *log.Logger) *DeepgramTranscriber {
	if logger == nil {
		logger = log.Default()
	}
	return &DeepgramTranscriber{
		APIKey:   apiKey,
		Endpoint: DefaultDeepgramEndpoint,
		Model:    DefaultDeepgramModel,
		Language: "en-US",
		Logger:   logger,
		Dialer:   websocket.DefaultDialer,
	}
}

func (dg *DeepgramTranscriber) listenURL() (string, error) {
	u, err := url.Parse(dg.Endpoint)
	if err != nil {
		return "", errors.Wrap(err, "parse deepgram endpoint")
	}
	q := u.Query()
	q.Set("model", dg.Model)
	if dg.Language != "" {
		q.Set("language", dg.Language)
	}
	q.Set("punctuate", "true")
	q.Set("smart_format", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Transcribe sends the file, signals end of stream and waits for Deepgram to close.
func (dg *DeepgramTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "open audio file")
	}
	defer f.Close()

	endpoint, err := dg.listenURL()
	if err != nil {
		return "", err
	}

	header := http.Header{
		"Authorization": {fmt.Sprintf("Token %s", dg.APIKey)},
	}
	conn, resp, err := dg.Dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return "", &errs.RemoteServiceError{Service: "deepgram", StatusCode: resp.StatusCode, Err: err}
		}
		return "", errs.Remote("deepgram", err)
	}
	defer conn.Close()
	dg.Logger.Printf("Connected to Deepgram")

	if err := dg.sendAudio(conn, f); err != nil {
		return "", errs.Remote("deepgram", err)
	}

	deadline := time.Now().Add(deepgramReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return "", errs.Remote("deepgram", err)
	}

	return dg.collect(conn)
}

func (dg *DeepgramTranscriber) sendAudio(conn *websocket.Conn, r io.Reader) error {
	buf := make([]byte, deepgramChunkSize)
	sent := 0
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return errors.Wrap(werr, "write audio")
			}
			sent += n
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read audio file")
		}
	}
	dg.Logger.Printf("Sent %d bytes to Deepgram", sent)

	return errors.Wrap(conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)), "close stream")
}

// collect reads until Deepgram closes the connection, keeping final segments.
func (dg *DeepgramTranscriber) collect(conn *websocket.Conn) (string, error) {
	var segments []string
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			return "", errs.Remote("deepgram", errors.Wrap(err, "read response"))
		}

		var msg TranscriptionMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			dg.Logger.Printf("Error parsing Deepgram response: %v", err)
			continue
		}
		if msg.Type != "" && msg.Type != "Results" {
			continue
		}
		if !msg.IsFinal || len(msg.Channel.Alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(msg.Channel.Alternatives[0].Transcript); text != "" {
			segments = append(segments, text)
		}
	}

	text := strings.Join(segments, " ")
	dg.Logger.Printf("Transcription: %q", text)
	return text, nil
}
