package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletTransaction records credits/debits for ledger history. Reference is
// unique, which is what makes every credit idempotent: settling the same
// commission or replaying the same top-up webhook cannot write twice.
type WalletTransaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	MemberID  uint            `gorm:"not null;index" json:"member_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // positive = credit, negative = debit
	Currency  string          `gorm:"size:3;not null" json:"currency"`
	Type      string          `gorm:"size:30;not null;index" json:"type"`
	Reference string          `gorm:"uniqueIndex;size:128;not null" json:"reference"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (WalletTransaction) TableName() string { return "wallet_transactions" }
