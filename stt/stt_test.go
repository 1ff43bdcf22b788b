package stt

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsingh-rishi/wyn-voice/errs"
)

var quiet = log.New(io.Discard, "", 0)

func writeClip(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	data := append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, size)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func openAIClient(url string) *openai.Client {
	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = url + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestOpenAITranscriber_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		_, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, "clip.wav", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":" What is 2+2? "}`)
	}))
	defer srv.Close()

	tr := NewOpenAITranscriber(openAIClient(srv.URL), "", quiet)
	text, err := tr.Transcribe(context.Background(), writeClip(t, 64))

	require.NoError(t, err)
	assert.Equal(t, "What is 2+2?", text)
}

func TestOpenAITranscriber_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer srv.Close()

	tr := NewOpenAITranscriber(openAIClient(srv.URL), "whisper-1", quiet)
	_, err := tr.Transcribe(context.Background(), writeClip(t, 16))

	require.Error(t, err)
	var remote *errs.RemoteServiceError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusServiceUnavailable, remote.StatusCode)
}

func deepgramServer(t *testing.T, results []TranscriptionMessage) (*httptest.Server, <-chan []byte) {
	upgrader := websocket.Upgrader{}
	audioCh := make(chan []byte, 1)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token dg-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		var received []byte
		for {
			kind, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind == websocket.BinaryMessage {
				received = append(received, msg...)
				continue
			}
			if strings.Contains(string(msg), "CloseStream") {
				break
			}
		}
		audioCh <- received

		for _, res := range results {
			payload, _ := json.Marshal(res)
			_ = conn.WriteMessage(websocket.TextMessage, payload)
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Metadata","request_id":"abc"}`))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})), audioCh
}

func result(text string, final bool) TranscriptionMessage {
	var m TranscriptionMessage
	m.Type = "Results"
	m.IsFinal = final
	m.Channel.Alternatives = append(m.Channel.Alternatives, struct {
		Transcript string  `json:"transcript"`
		Confidence float64 `json:"confidence"`
	}{Transcript: text, Confidence: 0.9})
	return m
}

func TestDeepgramTranscriber_CollectsFinalSegments(t *testing.T) {
	srv, audioCh := deepgramServer(t, []TranscriptionMessage{
		result("What", false),
		result("What is", true),
		result("", true),
		result("2+2?", true),
	})
	defer srv.Close()

	dg := NewDeepgramClient("dg-key", quiet)
	dg.Endpoint = "ws" + strings.TrimPrefix(srv.URL, "http")

	path := writeClip(t, 3*deepgramChunkSize)
	text, err := dg.Transcribe(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "What is 2+2?", text)

	want, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, <-audioCh)
}

func TestDeepgramTranscriber_Unauthorized(t *testing.T) {
	srv, _ := deepgramServer(t, nil)
	defer srv.Close()

	dg := NewDeepgramClient("wrong", quiet)
	dg.Endpoint = "ws" + strings.TrimPrefix(srv.URL, "http")

	_, err := dg.Transcribe(context.Background(), writeClip(t, 16))

	require.Error(t, err)
	var remote *errs.RemoteServiceError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusUnauthorized, remote.StatusCode)
}

func TestDeepgramTranscriber_Unreachable(t *testing.T) {
	dg := NewDeepgramClient("dg-key", quiet)
	dg.Endpoint = "ws://127.0.0.1:1/v1/listen"

	_, err := dg.Transcribe(context.Background(), writeClip(t, 16))

	assert.True(t, errors.Is(err, errs.ErrRemoteService))
}
