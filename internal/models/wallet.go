package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Wallet struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	MemberID uint            `gorm:"uniqueIndex;not null" json:"member_id"`
	Balance  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	Currency string          `gorm:"size:3;not null" json:"currency"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }
