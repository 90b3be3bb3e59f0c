package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rotzmediagroup/storypixie-admin/models"
)

// StoryRepository defines persistence for generated stories and their
// moderation state.
type StoryRepository interface {
	List(status models.StoryStatus, offset, limit int) ([]models.Story, error)
	AllByStatus(status models.StoryStatus) ([]models.Story, error)
	FindByID(id uint) (*models.Story, error)
	UpdateReview(id uint, status models.StoryStatus, reviewerID uint, note string) error
	SetCoverKey(id uint, key string) error
	Delete(id uint) error
	CountByStatus() (map[models.StoryStatus]int64, error)
}

type storyRepositoryImpl struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepositoryImpl{db: db}
}

func (r *storyRepositoryImpl) List(status models.StoryStatus, offset, limit int) ([]models.Story, error) {
	q := r.db.Order("created_at DESC").Offset(offset).Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var stories []models.Story
	if err := q.Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepositoryImpl) AllByStatus(status models.StoryStatus) ([]models.Story, error) {
	var stories []models.Story
	if err := r.db.Where("status = ?", status).Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepositoryImpl) FindByID(id uint) (*models.Story, error) {
	var story models.Story
	if err := r.db.First(&story, id).Error; err != nil {
		return nil, fmt.Errorf("story not found: %w", err)
	}
	return &story, nil
}

func (r *storyRepositoryImpl) UpdateReview(id uint, status models.StoryStatus, reviewerID uint, note string) error {
	return r.db.Model(&models.Story{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"review_note": note,
			"reviewed_at": time.Now(),
		}).Error
}

func (r *storyRepositoryImpl) SetCoverKey(id uint, key string) error {
	return r.db.Model(&models.Story{}).
		Where("id = ?", id).
		Update("cover_key", key).
		Error
}

func (r *storyRepositoryImpl) Delete(id uint) error {
	return r.db.Delete(&models.Story{}, id).Error
}

func (r *storyRepositoryImpl) CountByStatus() (map[models.StoryStatus]int64, error) {
	type row struct {
		Status models.StoryStatus
		N      int64
	}
	var rows []row
	err := r.db.Model(&models.Story{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.StoryStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}
