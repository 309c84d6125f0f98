package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// WithSoftDeleted includes archived rows that were deleted.
func WithSoftDeleted(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
