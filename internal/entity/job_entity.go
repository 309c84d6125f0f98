package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

func (s JobStatus) Finished() bool {
	return s == JobCompleted || s == JobFailed
}

// JobInput describes what to summarize. SourceType is one of
// "text", "youtube" or "fileUrl".
type JobInput struct {
	SourceType string `json:"sourceType"`
	Text       string `json:"text,omitempty"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

type Job struct {
	Id        uuid.UUID       `json:"id"`
	Status    JobStatus       `json:"status"`
	Input     JobInput        `json:"input"`
	Summary   string          `json:"summary,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Error     string          `json:"error,omitempty"`
	SummaryId *uuid.UUID      `json:"summaryId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
