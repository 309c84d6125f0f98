package pipeline

import (
	"context"
	"strings"

	"ai-digest-be/internal/config"
	"ai-digest-be/pkg/llm"
	"ai-digest-be/pkg/segmenter"
)

const module = "PIPELINE"

// Kind is where a document came from; it picks prompts and routing.
type Kind string

const (
	KindBook    Kind = "book"
	KindAudio   Kind = "audio"
	KindVideo   Kind = "video"
	KindGeneral Kind = "general"
)

// ParseKind maps free-form input ("pdf", "youtube", "") to a Kind.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "book", "pdf", "document":
		return KindBook
	case "audio", "podcast":
		return KindAudio
	case "video", "youtube":
		return KindVideo
	default:
		return KindGeneral
	}
}

func (k Kind) label() string {
	switch k {
	case KindBook:
		return "book"
	case KindAudio:
		return "audio transcript"
	case KindVideo:
		return "video transcript"
	default:
		return "document"
	}
}

// Document is immutable input to a pipeline run.
type Document struct {
	Content string
	Title   string
	Kind    Kind
}

func (d Document) title() string {
	if strings.TrimSpace(d.Title) == "" {
		return "Untitled"
	}
	return d.Title
}

// Completer is the slice of the completion client the pipeline needs.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, options ...llm.Option) (string, error)
}

// Settings are the per-stage budgets and thresholds.
type Settings struct {
	Segmenter          segmenter.Options
	ChunkTemperature   float64
	ChunkMaxTokens     int
	CombineTemperature float64
	CombineMaxTokens   int
	AuditTemperature   float64
	AuditMaxTokens     int
	AppendTemperature  float64
	ExpandTemperature  float64
	DensityFloor       float64
	MinSummaryWords    int
	DuplicateFactor    float64
	SourceBound        int
}

func DefaultSettings() Settings {
	return Settings{
		Segmenter:          segmenter.DefaultOptions(),
		ChunkTemperature:   0.03,
		ChunkMaxTokens:     800,
		CombineTemperature: 0.05,
		CombineMaxTokens:   800,
		AuditTemperature:   0,
		AuditMaxTokens:     200,
		AppendTemperature:  0.05,
		ExpandTemperature:  0.04,
		DensityFloor:       0.15,
		MinSummaryWords:    3000,
		DuplicateFactor:    1.2,
		SourceBound:        120000,
	}
}

func SettingsFromConfig(cfg config.PipelineConfig) Settings {
	return Settings{
		Segmenter: segmenter.Options{
			MaxChunks:          cfg.MaxChunks,
			PreferredChunkSize: cfg.PreferredChunkSize,
			MinChunkSize:       cfg.MinChunkSize,
		},
		ChunkTemperature:   cfg.ChunkTemperature,
		ChunkMaxTokens:     cfg.ChunkMaxTokens,
		CombineTemperature: cfg.CombineTemperature,
		CombineMaxTokens:   cfg.CombineMaxTokens,
		AuditTemperature:   cfg.AuditTemperature,
		AuditMaxTokens:     cfg.AuditMaxTokens,
		AppendTemperature:  cfg.AppendTemperature,
		ExpandTemperature:  cfg.ExpandTemperature,
		DensityFloor:       cfg.DensityFloor,
		MinSummaryWords:    cfg.MinSummaryWords,
		DuplicateFactor:    cfg.DuplicateFactor,
		SourceBound:        cfg.SourceBound,
	}
}
