// Package media wraps the ffmpeg and yt-dlp binaries used to turn videos
// and links into audio files ready for transcription.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge = errors.New("media file exceeds size limit")
	ErrNoOutput     = errors.New("media tool produced no output file")
)

// CommandRunner runs an external binary and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type Config struct {
	FFmpegPath  string
	YtDlpPath   string
	WorkDir     string
	MaxFileSize int64
	Timeout     time.Duration
}

type Tools struct {
	cfg    Config
	runner CommandRunner
}

func New(cfg Config) *Tools {
	return NewWithRunner(cfg, execRunner{})
}

func NewWithRunner(cfg Config, runner CommandRunner) *Tools {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.YtDlpPath == "" {
		cfg.YtDlpPath = "yt-dlp"
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Tools{cfg: cfg, runner: runner}
}

// ExtractAudio converts a video into a mono 16 kHz mp3 next to the work dir.
// The caller removes the returned file.
func (t *Tools) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	info, err := os.Stat(videoPath)
	if err != nil {
		return "", fmt.Errorf("stat video: %w", err)
	}
	if t.cfg.MaxFileSize > 0 && info.Size() > t.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	out := filepath.Join(t.cfg.WorkDir, "audio-"+uuid.NewString()+".mp3")
	args := []string{
		"-y", "-i", videoPath,
		"-vn", "-acodec", "libmp3lame", "-ar", "16000", "-ac", "1", "-b:a", "64k",
		out,
	}
	if output, err := t.runner.Run(ctx, t.cfg.FFmpegPath, args...); err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w: %s", err, tail(output))
	}
	if _, err := os.Stat(out); err != nil {
		return "", ErrNoOutput
	}
	return out, nil
}

// DownloadAudio fetches the audio track of a video URL with yt-dlp.
func (t *Tools) DownloadAudio(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	base := filepath.Join(t.cfg.WorkDir, "yt-"+uuid.NewString())
	args := []string{
		"-x", "--audio-format", "mp3", "--audio-quality", "64K",
		"--no-playlist",
		"-o", base + ".%(ext)s",
		url,
	}
	if t.cfg.MaxFileSize > 0 {
		args = append([]string{"--max-filesize", fmt.Sprintf("%d", t.cfg.MaxFileSize)}, args...)
	}
	if output, err := t.runner.Run(ctx, t.cfg.YtDlpPath, args...); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, tail(output))
	}

	out := base + ".mp3"
	if _, err := os.Stat(out); err != nil {
		return "", ErrNoOutput
	}
	return out, nil
}

func tail(output []byte) string {
	s := strings.TrimSpace(string(output))
	if len(s) > 500 {
		s = s[len(s)-500:]
	}
	return s
}
