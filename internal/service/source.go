package service

import (
	"fmt"
	"strings"

	"ai-digest-be/internal/dto"
	"ai-digest-be/internal/entity"
	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/content"
)

const (
	SourceYouTube = "youtube"
	SourceFileURL = "fileUrl"
	SourceText    = "text"
)

func JobInputFromRequest(req *dto.SourceRequest) entity.JobInput {
	return entity.JobInput{
		SourceType: req.Type,
		Text:       req.Text,
		URL:        req.URL,
		Title:      req.Title,
		Kind:       req.Kind,
	}
}

// SourceFromInput builds the content.Source an input describes.
func SourceFromInput(in entity.JobInput) (content.Source, error) {
	var kind pipeline.Kind
	if strings.TrimSpace(in.Kind) != "" {
		kind = pipeline.ParseKind(in.Kind)
	}

	switch in.SourceType {
	case SourceYouTube:
		if in.URL == "" {
			return nil, fmt.Errorf("%w: youtube source needs a url", ErrInvalidSource)
		}
		return content.YouTubeSource{URL: in.URL, Title: in.Title}, nil
	case SourceFileURL:
		if in.URL == "" {
			return nil, fmt.Errorf("%w: fileUrl source needs a url", ErrInvalidSource)
		}
		return content.FileURLSource{URL: in.URL, Title: in.Title, Kind: kind}, nil
	case SourceText:
		if strings.TrimSpace(in.Text) == "" {
			return nil, fmt.Errorf("%w: text source needs text", ErrInvalidSource)
		}
		return content.TextSource{Text: in.Text, Title: in.Title, Kind: kind}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidSource, in.SourceType)
	}
}
