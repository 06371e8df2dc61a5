package repository

import (
	"redvital/internal/models"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(p *models.Product) error {
	return r.db.Create(p).Error
}

func (r *ProductRepository) GetByID(id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetByIDs(ids []uint) ([]models.Product, error) {
	var list []models.Product
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.Where("id IN ? AND active = ?", ids, true).Find(&list).Error
	return list, err
}

func (r *ProductRepository) ListActive(limit, offset int) ([]models.Product, error) {
	var list []models.Product
	err := r.db.Where("active = ?", true).
		Order("name ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
