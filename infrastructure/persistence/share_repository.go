package persistence

import (
	"context"

	"ai-promoter/domain/model"
	"ai-promoter/domain/repository"

	"gorm.io/gorm"
)

// ShareRepository records shares through gorm. Rows are append-only.
type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) repository.IShare { return &ShareRepository{db: db} }

func (r *ShareRepository) Create(ctx context.Context, share *model.Share) error {
	return storeError("share.create", r.db.WithContext(ctx).Create(share).Error)
}

func (r *ShareRepository) CountByContent(ctx context.Context, contentID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Share{}).Where("content_id = ?", contentID).Count(&n).Error
	if err != nil {
		return 0, storeError("share.count", err)
	}
	return n, nil
}

func (r *ShareRepository) PlatformCounts(ctx context.Context, contentID int64) ([]model.PlatformShareCount, error) {
	var out []model.PlatformShareCount
	err := r.db.WithContext(ctx).Model(&model.Share{}).
		Select("platform, COUNT(*) AS count").
		Where("content_id = ?", contentID).
		Group("platform").
		Order("platform").
		Scan(&out).Error
	if err != nil {
		return nil, storeError("share.platform_counts", err)
	}
	return out, nil
}
