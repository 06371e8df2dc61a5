package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product carries the three values every sale is measured in: retail price
// (member currency at checkout is converted from this base price), point
// volume for qualification, and business volume for percentage bonuses.
type Product struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	SKU   string `gorm:"uniqueIndex;size:40;not null" json:"sku"`
	Name  string `gorm:"size:160;not null" json:"name"`
	IsKit bool   `gorm:"not null;default:false" json:"is_kit"` // kit presentations feed the fast-start bonus

	Price decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"` // base currency
	PV    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"pv"`
	VN    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"vn"`

	Active    bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string { return "products" }
