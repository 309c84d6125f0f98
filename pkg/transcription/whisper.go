// Package transcription sends audio files to a Whisper-compatible
// /audio/transcriptions endpoint.
package transcription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-digest-be/pkg/llm"
)

var (
	ErrFileTooLarge      = errors.New("audio file exceeds transcription size limit")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyTranscript   = errors.New("transcription returned no text")
)

var supportedFormats = map[string]bool{
	".mp3": true, ".mp4": true, ".mpeg": true, ".mpga": true,
	".m4a": true, ".wav": true, ".webm": true, ".flac": true,
}

func IsSupported(path string) bool {
	return supportedFormats[strings.ToLower(filepath.Ext(path))]
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxFileSize int64
}

type WhisperClient struct {
	cfg    Config
	client *http.Client
}

func NewWhisperClient(cfg Config) *WhisperClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 25 * 1024 * 1024
	}
	return &WhisperClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (w *WhisperClient) WithHTTPClient(c *http.Client) *WhisperClient {
	w.client = c
	return w
}

// Transcribe uploads the file at path and returns plain transcript text.
func (w *WhisperClient) Transcribe(ctx context.Context, path string) (string, error) {
	if !IsSupported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat audio: %w", err)
	}
	if info.Size() > w.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), w.cfg.MaxFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	for k, v := range map[string]string{
		"model":           w.cfg.Model,
		"response_format": "text",
		"temperature":     "0",
	} {
		if err := form.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	url := strings.TrimRight(w.cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if w.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &llm.StatusError{Provider: "whisper", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	text := strings.TrimSpace(string(respBody))
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
