package transcription

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ai-digest-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAudio(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "text", r.FormValue("response_format"))

		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "talk.mp3", header.Filename)
		data, _ := io.ReadAll(f)
		assert.Len(t, data, 64)

		_, _ = w.Write([]byte("  hello world \n"))
	}))
	defer srv.Close()

	c := NewWhisperClient(Config{BaseURL: srv.URL, APIKey: "key"})
	text, err := c.Transcribe(context.Background(), writeAudio(t, "talk.mp3", 64))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestTranscribeRejectsBeforeUpload(t *testing.T) {
	c := NewWhisperClient(Config{BaseURL: "http://127.0.0.1:0", MaxFileSize: 10})

	_, err := c.Transcribe(context.Background(), writeAudio(t, "big.wav", 11))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = c.Transcribe(context.Background(), writeAudio(t, "notes.txt", 1))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTranscribeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	c := NewWhisperClient(Config{BaseURL: srv.URL})
	_, err := c.Transcribe(context.Background(), writeAudio(t, "a.m4a", 4))

	var statusErr *llm.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
