package repository

import (
	"gorm.io/gorm"

	"github.com/kadraly/kadraly-backend/internal/models"
)

type CreditPackageRepository struct {
	db *gorm.DB
}

func NewCreditPackageRepository(db *gorm.DB) *CreditPackageRepository {
	return &CreditPackageRepository{db: db}
}

func (r *CreditPackageRepository) GetAll() ([]models.CreditPackage, error) {
	var packages []models.CreditPackage
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&packages).Error
	return packages, err
}

func (r *CreditPackageRepository) GetByID(id uint) (*models.CreditPackage, error) {
	var pkg models.CreditPackage
	if err := r.db.First(&pkg, id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}
