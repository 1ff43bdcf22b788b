package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	gws "github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsingh-rishi/wyn-voice/errs"
	"github.com/mrsingh-rishi/wyn-voice/mocks"
	"github.com/mrsingh-rishi/wyn-voice/model"
	"github.com/mrsingh-rishi/wyn-voice/server"
)

var quiet = log.New(io.Discard, "", 0)

func newServer(t *testing.T) (*server.Server, *mocks.MockChat, *mocks.MockVoice, string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockChat(ctrl)
	voice := mocks.NewMockVoice(ctrl)
	dir := t.TempDir()
	s, err := server.New(chat, voice, dir, quiet)
	require.NoError(t, err)
	return s, chat, voice, dir
}

func do(t *testing.T, s *server.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestNew_RequiresChat(t *testing.T) {
	_, err := server.New(nil, nil, "", quiet)
	assert.EqualError(t, err, "chat is required")
}

func TestHealthzSetsRequestID(t *testing.T) {
	s, _, _, _ := newServer(t)

	resp, body := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.Len(t, resp.Header.Get(server.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(server.RequestIDHeader, "trace-1")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "trace-1", resp.Header.Get(server.RequestIDHeader))
}

func TestChatAndHistory(t *testing.T) {
	s, chat, _, _ := newServer(t)
	chat.EXPECT().GenerateResponse(gomock.Any(), "What is 2+2?").Return("4", nil)
	chat.EXPECT().History().Return([]model.Message{
		{Role: model.RoleUser, Content: "What is 2+2?"},
		{Role: model.RoleAssistant, Content: "4"},
	})

	resp, body := do(t, s, http.MethodPost, "/chat", `{"prompt":"What is 2+2?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"reply":"4"}`, string(body))

	resp, body = do(t, s, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"role":"user","content":"What is 2+2?"},{"role":"assistant","content":"4"}]`, string(body))
}

func TestHistoryEmptyIsArray(t *testing.T) {
	s, chat, _, _ := newServer(t)
	chat.EXPECT().History().Return(nil)

	_, body := do(t, s, http.MethodGet, "/history", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestChatErrorMapping(t *testing.T) {
	s, chat, _, _ := newServer(t)
	gomock.InOrder(
		chat.EXPECT().GenerateResponse(gomock.Any(), "").Return("", errs.Invalid("prompt is empty")),
		chat.EXPECT().GenerateResponse(gomock.Any(), "hi").Return("", errs.Remote("chat completion", errors.New("connection refused"))),
	)

	resp, body := do(t, s, http.MethodPost, "/chat", `{"prompt":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "prompt is empty")

	resp, _ = do(t, s, http.MethodPost, "/chat", `{"prompt":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, _ = do(t, s, http.MethodPost, "/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSpeech(t *testing.T) {
	s, _, voice, dir := newServer(t)
	payload := []byte("ID3mp3-bytes")
	voice.EXPECT().TextToVoice(gomock.Any(), "Hello world", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, path string) (string, error) {
			assert.Equal(t, dir, filepath.Dir(path))
			assert.Equal(t, ".mp3", filepath.Ext(path))
			return path, os.WriteFile(path, payload, 0o644)
		})

	resp, body := do(t, s, http.MethodPost, "/speech", `{"text":"Hello world"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, payload, body)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "speech file is removed once served")
}

func TestSpeechRejectsEmptyText(t *testing.T) {
	s, _, _, _ := newServer(t)

	resp, _ := do(t, s, http.MethodPost, "/speech", `{"text":"  "}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListen(t *testing.T) {
	s, _, voice, _ := newServer(t)
	gomock.InOrder(
		voice.EXPECT().ProcessAudioAndGenerateResponse(gomock.Any()).Return("4", nil),
		voice.EXPECT().ProcessAudioAndGenerateResponse(gomock.Any()).Return("", errs.Device(nil, "no default input device")),
	)

	resp, body := do(t, s, http.MethodPost, "/listen", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"reply":"4"}`, string(body))

	resp, _ = do(t, s, http.MethodPost, "/listen", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestVoiceRoutesDisabledWithoutPipeline(t *testing.T) {
	s, err := server.New(mocks.NewMockChat(gomock.NewController(t)), nil, "", quiet)
	require.NoError(t, err)

	resp, _ := do(t, s, http.MethodPost, "/listen", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	resp, _ = do(t, s, http.MethodPost, "/speech", `{"text":"hi"}`)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:           errs.Invalid("bad"),
		http.StatusUnauthorized:         errors.Wrap(errs.ErrInvalidCredentials, "key"),
		http.StatusNotFound:             &errs.PathError{Op: "play", Path: "x.mp3", Kind: errs.ErrFileNotFound},
		http.StatusUnsupportedMediaType: &errs.PathError{Op: "decode", Path: "x.txt", Kind: errs.ErrUnsupportedFormat},
		http.StatusServiceUnavailable:   errs.Device(nil, "no device"),
		http.StatusBadGateway:           errs.RemoteStatus("speech", 500, "boom"),
		http.StatusInternalServerError:  errors.New("disk full"),
	}
	for want, err := range cases {
		assert.Equal(t, want, server.StatusFor(err), err.Error())
	}
}

func TestWebSocketChat(t *testing.T) {
	s, chat, _, _ := newServer(t)
	gomock.InOrder(
		chat.EXPECT().GenerateResponse(gomock.Any(), "hello").Return("hi there", nil),
		chat.EXPECT().GenerateResponse(gomock.Any(), "").Return("", errs.Invalid("prompt is empty")),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.App().Listener(ln) }()
	defer s.Shutdown()

	conn, _, err := gws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var resp map[string]string
	require.NoError(t, conn.WriteJSON(map[string]string{"prompt": "hello"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, map[string]string{"reply": "hi there"}, resp)

	resp = nil
	require.NoError(t, conn.WriteJSON(map[string]string{"prompt": ""}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Contains(t, resp["error"], "prompt is empty")

	require.NoError(t, conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, "")))
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s, _, _, _ := newServer(t)

	resp, body := do(t, s, http.MethodGet, "/ws", "")

	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.NotEmpty(t, decoded["error"])
}
