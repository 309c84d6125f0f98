package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobResponse struct {
	Id        uuid.UUID       `json:"id"`
	Status    string          `json:"status"`
	Summary   string          `json:"summary,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Error     string          `json:"error,omitempty"`
	SummaryId *uuid.UUID      `json:"summaryId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// PublishSummaryJobMessage is the payload on the in-process job topic.
type PublishSummaryJobMessage struct {
	JobId uuid.UUID `json:"job_id"`
}
