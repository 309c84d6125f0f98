package mapper

import (
	"encoding/json"
	"time"

	"ai-digest-be/internal/entity"
	"ai-digest-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SummaryMapper struct{}

func NewSummaryMapper() *SummaryMapper {
	return &SummaryMapper{}
}

func (m *SummaryMapper) ToEntity(s *model.Summary) *entity.Summary {
	if s == nil {
		return nil
	}
	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Summary{
		Id:        s.Id,
		Title:     s.Title,
		Kind:      s.Kind,
		Summary:   s.Summary,
		Metadata:  json.RawMessage(s.Metadata),
		CreatedAt: s.CreatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *SummaryMapper) ToModel(s *entity.Summary) *model.Summary {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.Summary{
		Id:        s.Id,
		Title:     s.Title,
		Kind:      s.Kind,
		Summary:   s.Summary,
		Metadata:  datatypes.JSON(s.Metadata),
		CreatedAt: s.CreatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *SummaryMapper) ToEntities(summaries []*model.Summary) []*entity.Summary {
	entities := make([]*entity.Summary, len(summaries))
	for i, s := range summaries {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
