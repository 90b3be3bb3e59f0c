package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/rotzmediagroup/storypixie-admin/models"
)

// ActivityRepository defines the append-only audit trail.
type ActivityRepository interface {
	Record(entry *models.ActivityLog) error
	ListRecent(limit int) ([]models.ActivityLog, error)
	// DeleteOlderThan removes up to batchSize rows created before cutoff and
	// returns how many were deleted.
	DeleteOlderThan(cutoff time.Time, batchSize int) (int64, error)
}

type activityRepositoryImpl struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepositoryImpl{db: db}
}

func (r *activityRepositoryImpl) Record(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

func (r *activityRepositoryImpl) ListRecent(limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *activityRepositoryImpl) DeleteOlderThan(cutoff time.Time, batchSize int) (int64, error) {
	res := r.db.Where("id IN (?)",
		r.db.Model(&models.ActivityLog{}).
			Select("id").
			Where("created_at < ?", cutoff).
			Limit(batchSize),
	).Delete(&models.ActivityLog{})
	return res.RowsAffected, res.Error
}
