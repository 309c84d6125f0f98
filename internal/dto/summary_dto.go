package dto

import (
	"encoding/json"
	"time"

	"ai-digest-be/pkg/ai/pipeline"
	"ai-digest-be/pkg/quiz"

	"github.com/google/uuid"
)

type SummarizeRequest struct {
	Text  string `json:"text" validate:"required"`
	Type  string `json:"type"`
	Title string `json:"title" validate:"max=255"`
}

type ExtractBookRequest struct {
	Text  string `json:"text" validate:"required"`
	Title string `json:"title" validate:"max=255"`
}

// SourceRequest selects one content source. URL is needed for
// "youtube" and "fileUrl", Text for "text".
type SourceRequest struct {
	Type  string `json:"type" validate:"required,oneof=youtube fileUrl text"`
	URL   string `json:"url" validate:"omitempty,url"`
	Text  string `json:"text"`
	Title string `json:"title" validate:"max=255"`
	Kind  string `json:"kind"`
}

type SummaryResponse struct {
	Success        bool              `json:"success"`
	Summary        string            `json:"summary,omitempty"`
	Metadata       pipeline.Metadata `json:"metadata"`
	Error          string            `json:"error,omitempty"`
	ProcessingTime int64             `json:"processingTime"`
	SummaryId      *uuid.UUID        `json:"summaryId,omitempty"`
	PageCount      int               `json:"pageCount,omitempty"`
	LowConfidence  bool              `json:"lowConfidence,omitempty"`
}

type QuizRequest struct {
	Summary string `json:"summary" validate:"required"`
	Count   int    `json:"count" validate:"omitempty,min=1,max=20"`
}

type QuizResponse struct {
	Questions []quiz.Question `json:"questions"`
}

type ListSummariesRequest struct {
	Kind   string `query:"kind" validate:"omitempty,oneof=book audio video general"`
	Query  string `query:"q"`
	Since  string `query:"since" validate:"omitempty,datetime=2006-01-02"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type SummaryListItem struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

type SummaryListResponse struct {
	Items []SummaryListItem `json:"items"`
	Total int64             `json:"total"`
}

type ArchivedSummaryResponse struct {
	Id        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Kind      string          `json:"kind"`
	Summary   string          `json:"summary"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
