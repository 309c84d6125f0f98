// Package content turns the supported input kinds (YouTube links, remote
// files, uploads and raw text) into a pipeline.Document.
package content

import (
	"path/filepath"
	"strings"

	"ai-digest-be/pkg/ai/pipeline"
)

// Source is a closed set: YouTubeSource, FileURLSource, FileUploadSource
// and TextSource.
type Source interface {
	sealed()
}

type YouTubeSource struct {
	URL   string
	Title string
}

type FileURLSource struct {
	URL   string
	Title string
	// Kind may be empty; it is then guessed from the URL path.
	Kind pipeline.Kind
}

type FileUploadSource struct {
	Path     string
	Filename string
	Title    string
	Kind     pipeline.Kind
}

type TextSource struct {
	Text  string
	Title string
	Kind  pipeline.Kind
}

func (YouTubeSource) sealed()    {}
func (FileURLSource) sealed()    {}
func (FileUploadSource) sealed() {}
func (TextSource) sealed()       {}

var (
	audioExtensions = map[string]bool{".mp3": true, ".mpga": true, ".m4a": true, ".wav": true, ".flac": true, ".ogg": true, ".aac": true}
	videoExtensions = map[string]bool{".mp4": true, ".mpeg": true, ".mov": true, ".mkv": true, ".avi": true, ".webm": true}
)

// KindFromFilename guesses the document kind from a file extension.
func KindFromFilename(name string) pipeline.Kind {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".pdf":
		return pipeline.KindBook
	case audioExtensions[ext]:
		return pipeline.KindAudio
	case videoExtensions[ext]:
		return pipeline.KindVideo
	default:
		return pipeline.KindGeneral
	}
}

func titleOr(title, fallback string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return strings.TrimSuffix(filepath.Base(fallback), filepath.Ext(fallback))
}
