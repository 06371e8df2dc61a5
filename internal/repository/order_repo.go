package repository

import (
	"redvital/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists an order with its lines.
func (r *OrderRepository) Create(o *models.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByID(id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.Preload("Lines").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// LockByID loads the order with its lines under a row lock; callers check and
// mutate status only through this to prevent double confirmation.
func (r *OrderRepository) LockByID(tx *gorm.DB, id uint) (*models.Order, error) {
	var o models.Order
	if err := forUpdate(tx).First(&o, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", id).Find(&o.Lines).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByPaymentRef(ref string) (*models.Order, error) {
	var o models.Order
	if err := r.db.Where("payment_ref = ?", ref).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByMember(memberID uint, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("member_id = ?", memberID).
		Preload("Lines").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) UpdateStatus(tx *gorm.DB, orderID uint, status string) error {
	return tx.Model(&models.Order{}).Where("id = ?", orderID).
		Update("status", status).Error
}
