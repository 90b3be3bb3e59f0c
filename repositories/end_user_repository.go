package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/rotzmediagroup/storypixie-admin/models"
)

// EndUserRepository defines persistence for managed reader accounts.
type EndUserRepository interface {
	List(offset, limit int) ([]models.EndUser, error)
	FindByID(id uint) (*models.EndUser, error)
	UpdateStatus(id uint, status string) error
	AdjustCredits(id uint, delta int) error
	Count() (int64, error)
}

type endUserRepositoryImpl struct {
	db *gorm.DB
}

func NewEndUserRepository(db *gorm.DB) EndUserRepository {
	return &endUserRepositoryImpl{db: db}
}

func (r *endUserRepositoryImpl) List(offset, limit int) ([]models.EndUser, error) {
	var users []models.EndUser
	if err := r.db.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *endUserRepositoryImpl) FindByID(id uint) (*models.EndUser, error) {
	var user models.EndUser
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &user, nil
}

func (r *endUserRepositoryImpl) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.EndUser{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *endUserRepositoryImpl) AdjustCredits(id uint, delta int) error {
	return r.db.Model(&models.EndUser{}).
		Where("id = ?", id).
		UpdateColumn("story_credits", gorm.Expr("story_credits + ?", delta)).
		Error
}

func (r *endUserRepositoryImpl) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.EndUser{}).Count(&n).Error
	return n, err
}
