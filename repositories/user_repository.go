package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rotzmediagroup/storypixie-admin/models"
)

// UserRepository defines persistence for admin accounts.
type UserRepository interface {
	Create(user *models.AdminUser) error
	FindByEmail(email string) (*models.AdminUser, error)
	FindByID(id uint) (*models.AdminUser, error)
	List() ([]models.AdminUser, error)
	Update(user *models.AdminUser) error
	RecordLogin(id uint) error
}

type userRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) Create(user *models.AdminUser) error {
	return r.db.Create(user).Error
}

func (r *userRepositoryImpl) FindByEmail(email string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("admin not found: %w", err)
	}
	return &user, nil
}

func (r *userRepositoryImpl) FindByID(id uint) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("admin not found: %w", err)
	}
	return &user, nil
}

func (r *userRepositoryImpl) List() ([]models.AdminUser, error) {
	var users []models.AdminUser
	if err := r.db.Order("email").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepositoryImpl) Update(user *models.AdminUser) error {
	return r.db.Save(user).Error
}

func (r *userRepositoryImpl) RecordLogin(id uint) error {
	return r.db.Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", time.Now()).
		Error
}
