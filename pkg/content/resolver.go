package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/pdf"
)

const module = "CONTENT"

var (
	ErrEmptyContent    = errors.New("content is empty")
	ErrInvalidURL      = errors.New("invalid url")
	ErrDownloadTooBig  = errors.New("remote file exceeds size limit")
	ErrUnsupportedKind = errors.New("unsupported content kind")

	youtubeHost = regexp.MustCompile(`(^|\.)(youtube\.com|youtu\.be)$`)
)

type PDFExtractor interface {
	Extract(ctx context.Context, data []byte) (*pdf.Result, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

type MediaTools interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	DownloadAudio(ctx context.Context, url string) (string, error)
}

// Resolved is a ready-to-summarize document plus how it was obtained.
type Resolved struct {
	Document      pipeline.Document
	PageCount     int
	LowConfidence bool
}

type Resolver struct {
	pdf         PDFExtractor
	transcriber Transcriber
	media       MediaTools
	client      *http.Client
	workDir     string
	maxDownload int64
	logger      logger.ILogger
}

func NewResolver(pdfExtractor PDFExtractor, transcriber Transcriber, media MediaTools, workDir string, maxDownload int64, log logger.ILogger) *Resolver {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Resolver{
		pdf:         pdfExtractor,
		transcriber: transcriber,
		media:       media,
		client:      &http.Client{Timeout: 5 * time.Minute},
		workDir:     workDir,
		maxDownload: maxDownload,
		logger:      log,
	}
}

func (r *Resolver) WithHTTPClient(c *http.Client) *Resolver {
	r.client = c
	return r
}

func (r *Resolver) Resolve(ctx context.Context, src Source) (*Resolved, error) {
	switch s := src.(type) {
	case YouTubeSource:
		return r.resolveYouTube(ctx, s)
	case FileURLSource:
		return r.resolveFileURL(ctx, s)
	case FileUploadSource:
		kind := s.Kind
		if kind == "" {
			kind = KindFromFilename(s.Filename)
		}
		return r.resolveFile(ctx, s.Path, titleOr(s.Title, s.Filename), kind)
	case TextSource:
		if strings.TrimSpace(s.Text) == "" {
			return nil, ErrEmptyContent
		}
		kind := s.Kind
		if kind == "" {
			kind = pipeline.KindGeneral
		}
		return &Resolved{Document: pipeline.Document{Content: s.Text, Title: s.Title, Kind: kind}}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKind, src)
	}
}

func (r *Resolver) resolveYouTube(ctx context.Context, s YouTubeSource) (*Resolved, error) {
	u, err := url.Parse(s.URL)
	if err != nil || !youtubeHost.MatchString(strings.ToLower(u.Hostname())) {
		return nil, fmt.Errorf("%w: not a youtube link", ErrInvalidURL)
	}

	audio, err := r.media.DownloadAudio(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("download youtube audio: %w", err)
	}
	defer os.Remove(audio)

	transcript, err := r.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("transcribe youtube audio: %w", err)
	}

	r.logger.Info(module, "YouTube source transcribed", map[string]interface{}{"url": s.URL, "chars": len(transcript)})
	return &Resolved{Document: pipeline.Document{Content: transcript, Title: titleOr(s.Title, "YouTube video"), Kind: pipeline.KindVideo}}, nil
}

func (r *Resolver) resolveFileURL(ctx context.Context, s FileURLSource) (*Resolved, error) {
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, s.URL)
	}

	name := path.Base(u.Path)
	kind := s.Kind
	if kind == "" {
		kind = KindFromFilename(name)
	}

	local, err := r.download(ctx, s.URL, filepath.Ext(name))
	if err != nil {
		return nil, err
	}
	defer os.Remove(local)

	return r.resolveFile(ctx, local, titleOr(s.Title, name), kind)
}

func (r *Resolver) download(ctx context.Context, rawURL, ext string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp(r.workDir, "download-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer f.Close()

	var body io.Reader = resp.Body
	if r.maxDownload > 0 {
		body = io.LimitReader(resp.Body, r.maxDownload+1)
	}
	n, err := io.Copy(f, body)
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("save download: %w", err)
	}
	if r.maxDownload > 0 && n > r.maxDownload {
		os.Remove(f.Name())
		return "", ErrDownloadTooBig
	}
	return f.Name(), nil
}

func (r *Resolver) resolveFile(ctx context.Context, filePath, title string, kind pipeline.Kind) (*Resolved, error) {
	switch kind {
	case pipeline.KindBook:
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read pdf: %w", err)
		}
		res, err := r.pdf.Extract(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("extract pdf: %w", err)
		}
		if res.LowConfidence {
			r.logger.Warn(module, "PDF text extraction looks incomplete", map[string]interface{}{
				"pages": res.PageCount,
				"chars": len(res.Text),
				"bytes": len(data),
			})
		}
		return &Resolved{
			Document:      pipeline.Document{Content: res.Text, Title: title, Kind: pipeline.KindBook},
			PageCount:     res.PageCount,
			LowConfidence: res.LowConfidence,
		}, nil

	case pipeline.KindAudio:
		transcript, err := r.transcriber.Transcribe(ctx, filePath)
		if err != nil {
			return nil, fmt.Errorf("transcribe audio: %w", err)
		}
		return &Resolved{Document: pipeline.Document{Content: transcript, Title: title, Kind: pipeline.KindAudio}}, nil

	case pipeline.KindVideo:
		audio, err := r.media.ExtractAudio(ctx, filePath)
		if err != nil {
			return nil, fmt.Errorf("extract audio: %w", err)
		}
		defer os.Remove(audio)
		transcript, err := r.transcriber.Transcribe(ctx, audio)
		if err != nil {
			return nil, fmt.Errorf("transcribe video audio: %w", err)
		}
		return &Resolved{Document: pipeline.Document{Content: transcript, Title: title, Kind: pipeline.KindVideo}}, nil

	default:
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read text: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, ErrEmptyContent
		}
		return &Resolved{Document: pipeline.Document{Content: string(data), Title: title, Kind: pipeline.KindGeneral}}, nil
	}
}
