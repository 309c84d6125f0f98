package implementation

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"ai-digest-be/internal/entity"
	"ai-digest-be/internal/model"
	"ai-digest-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "archive.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Summary{}))
	return db
}

func TestSummaryRepositoryCreateAndFind(t *testing.T) {
	repo := NewSummaryRepository(newTestDB(t))
	ctx := context.Background()

	s := &entity.Summary{
		Title:    "Dune",
		Kind:     "book",
		Summary:  "Spice.",
		Metadata: json.RawMessage(`{"chunkCount":5}`),
	}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotEmpty(t, s.Id)
	assert.False(t, s.CreatedAt.IsZero())

	found, err := repo.FindOne(ctx, specification.ByID{ID: s.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Dune", found.Title)
	assert.JSONEq(t, `{"chunkCount":5}`, string(found.Metadata))

	require.NoError(t, repo.Delete(ctx, s.Id))
	gone, err := repo.FindOne(ctx, specification.ByID{ID: s.Id})
	assert.NoError(t, err)
	assert.Nil(t, gone)

	deleted, err := repo.FindOne(ctx, specification.IncludeDeleted{}, specification.ByID{ID: s.Id})
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.True(t, deleted.IsDeleted)
}

func TestSummaryRepositoryFindAllWithSpecifications(t *testing.T) {
	repo := NewSummaryRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Alpha Book", "Beta Talk", "Gamma Book"} {
		kind := "book"
		if title == "Beta Talk" {
			kind = "video"
		}
		require.NoError(t, repo.Create(ctx, &entity.Summary{
			Title:     title,
			Kind:      kind,
			Summary:   "text",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	books, err := repo.FindAll(ctx,
		specification.ByKind{Kind: "book"},
		specification.Newest{},
	)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Gamma Book", books[0].Title)
	assert.Equal(t, "Alpha Book", books[1].Title)

	page, err := repo.FindAll(ctx,
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: 1, Offset: 1},
	)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Beta Talk", page[0].Title)

	count, err := repo.Count(ctx, specification.TitleContains{Query: "book"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	recent, err := repo.Count(ctx, specification.CreatedAfter{Time: base.Add(30 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent)
}
