package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Summary is an archived pipeline output.
type Summary struct {
	Id        uuid.UUID
	Title     string
	Kind      string
	Summary   string
	Metadata  json.RawMessage
	CreatedAt time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
