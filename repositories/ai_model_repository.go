package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/rotzmediagroup/storypixie-admin/models"
)

// AIModelRepository defines persistence for generation backend configs.
type AIModelRepository interface {
	List() ([]models.AIModel, error)
	FindByID(id uint) (*models.AIModel, error)
	Create(model *models.AIModel) error
	Update(model *models.AIModel) error
	// Activate marks one model active and deactivates the others with the
	// same purpose, in a single transaction.
	Activate(id uint) error
}

type aiModelRepositoryImpl struct {
	db *gorm.DB
}

func NewAIModelRepository(db *gorm.DB) AIModelRepository {
	return &aiModelRepositoryImpl{db: db}
}

func (r *aiModelRepositoryImpl) List() ([]models.AIModel, error) {
	var configs []models.AIModel
	if err := r.db.Order("purpose, name").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *aiModelRepositoryImpl) FindByID(id uint) (*models.AIModel, error) {
	var config models.AIModel
	if err := r.db.First(&config, id).Error; err != nil {
		return nil, fmt.Errorf("model config not found: %w", err)
	}
	return &config, nil
}

func (r *aiModelRepositoryImpl) Create(model *models.AIModel) error {
	return r.db.Create(model).Error
}

func (r *aiModelRepositoryImpl) Update(model *models.AIModel) error {
	return r.db.Save(model).Error
}

func (r *aiModelRepositoryImpl) Activate(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var target models.AIModel
		if err := tx.First(&target, id).Error; err != nil {
			return fmt.Errorf("model config not found: %w", err)
		}

		err := tx.Model(&models.AIModel{}).
			Where("purpose = ? AND id <> ?", target.Purpose, id).
			Update("active", false).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.AIModel{}).
			Where("id = ?", id).
			Update("active", true).Error
	})
}
