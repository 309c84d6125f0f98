package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"ai-digest-be/internal/dto"
	"ai-digest-be/internal/pkg/serverutils"
	"ai-digest-be/internal/service"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/completion"
	"ai-digest-be/pkg/content"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSummaryService struct {
	summarizeErr error
	sources      []content.Source
	uploadSeen   bool
}

func okResponse(title string) *dto.SummaryResponse {
	return &dto.SummaryResponse{
		Success:  true,
		Summary:  "summary",
		Metadata: pipeline.Metadata{Title: title, Mode: pipeline.ModeSingle},
	}
}

func (s *stubSummaryService) Summarize(_ context.Context, req *dto.SummarizeRequest) (*dto.SummaryResponse, error) {
	if s.summarizeErr != nil {
		var failed *service.SummaryFailedError
		if errors.As(s.summarizeErr, &failed) {
			return failed.Response, s.summarizeErr
		}
		return nil, s.summarizeErr
	}
	return okResponse(req.Title), nil
}

func (s *stubSummaryService) ExtractBook(_ context.Context, req *dto.ExtractBookRequest) (*dto.SummaryResponse, error) {
	return okResponse(req.Title), nil
}

func (s *stubSummaryService) SummarizeSource(_ context.Context, src content.Source) (*dto.SummaryResponse, error) {
	s.sources = append(s.sources, src)
	if up, ok := src.(content.FileUploadSource); ok {
		_, err := os.Stat(up.Path)
		s.uploadSeen = err == nil
	}
	return okResponse("source"), nil
}

func (s *stubSummaryService) GenerateQuiz(context.Context, *dto.QuizRequest) (*dto.QuizResponse, error) {
	return &dto.QuizResponse{}, nil
}

func (s *stubSummaryService) CompletionStatus() completion.Status {
	return completion.Status{Model: "deepseek-chat", ActiveRequests: 1}
}

func (s *stubSummaryService) VerifyModel(context.Context) (*completion.ModelReport, error) {
	return &completion.ModelReport{Match: true}, nil
}

func (s *stubSummaryService) ListSummaries(context.Context, *dto.ListSummariesRequest) (*dto.SummaryListResponse, error) {
	return nil, service.ErrArchiveDisabled
}

func (s *stubSummaryService) GetSummary(context.Context, uuid.UUID) (*dto.ArchivedSummaryResponse, error) {
	return nil, service.ErrSummaryNotFound
}

func newTestApp(svc service.ISummaryService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewSummaryController(svc, os.TempDir()).RegisterRoutes(app.Group("/api"), serverutils.PassThrough)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func TestSummarizeEndpoint(t *testing.T) {
	app := newTestApp(&stubSummaryService{})

	resp := postJSON(t, app, "/api/summarize", `{"text":"hello","title":"Hi"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "summary", body["summary"])

	resp = postJSON(t, app, "/api/summarize", `{"title":"no text"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSummarizeFailureStatus(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
	}{
		{"backend", &completion.Error{Kind: completion.ErrAuth, Attempts: 1, Err: errors.New("401")}, fiber.StatusBadGateway},
		{"input", errors.New("document could not be segmented"), fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failure := &service.SummaryFailedError{
				Response: &dto.SummaryResponse{Success: false, Error: tt.cause.Error(), ProcessingTime: 7},
				Err:      tt.cause,
			}
			app := newTestApp(&stubSummaryService{summarizeErr: failure})

			resp := postJSON(t, app, "/api/summarize", `{"text":"hello"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeBody(t, resp.Body)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.cause.Error(), body["error"])
			assert.Equal(t, float64(7), body["processingTime"])
		})
	}
}

func TestSummarizeSourceEndpoint(t *testing.T) {
	svc := &stubSummaryService{}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/api/summarize/source", `{"type":"youtube","url":"https://youtu.be/abc"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, svc.sources, 1)
	assert.Equal(t, content.YouTubeSource{URL: "https://youtu.be/abc"}, svc.sources[0])

	resp = postJSON(t, app, "/api/summarize/source", `{"type":"fax"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/summarize/source", `{"type":"text"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadEndpointSavesFile(t *testing.T) {
	svc := &stubSummaryService{}
	app := newTestApp(svc)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "lecture.mp3")
	require.NoError(t, err)
	_, err = part.Write([]byte("audio bytes"))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("title", "Lecture 1"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/summarize/audio", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, svc.sources, 1)
	up, ok := svc.sources[0].(content.FileUploadSource)
	require.True(t, ok)
	assert.Equal(t, pipeline.KindAudio, up.Kind)
	assert.Equal(t, "lecture.mp3", up.Filename)
	assert.Equal(t, "Lecture 1", up.Title)
	assert.True(t, svc.uploadSeen, "upload should exist while summarizing")

	_, statErr := os.Stat(up.Path)
	assert.True(t, os.IsNotExist(statErr), "upload should be removed afterwards")
}

func TestUploadEndpointRequiresFile(t *testing.T) {
	app := newTestApp(&stubSummaryService{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", "nothing"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/summarize/pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExtractBookJSON(t *testing.T) {
	app := newTestApp(&stubSummaryService{})

	resp := postJSON(t, app, "/api/extract/book", `{"text":"chapter one","title":"Book"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Book", decodeBody(t, resp.Body)["metadata"].(map[string]interface{})["title"])
}

func TestDiagnosticsAndArchiveEndpoints(t *testing.T) {
	app := newTestApp(&stubSummaryService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/completion/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decodeBody(t, resp.Body)["data"].(map[string]interface{})
	assert.Equal(t, "deepseek-chat", data["model"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/summaries", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/summaries/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/summaries/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
