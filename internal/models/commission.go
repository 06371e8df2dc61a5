package models

import (
	"time"

	"github.com/shopspring/decimal"
	"redvital/internal/domain"
)

// Commission is an immutable earning fact. AmountVN is the origin amount in
// the base currency; Amount is the converted amount in the recipient's
// currency, with the rate that was applied. Once PAID it is never mutated.
//
// RankCode is set only for rank-achievement rows; the unique index on
// (member_id, rank_code) is what makes the achievement bonus one-time per
// member per rank.
type Commission struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	MemberID  uint             `gorm:"not null;index;index:idx_commission_rank_once,unique" json:"member_id"`
	BonusType domain.BonusType `gorm:"size:30;not null;index" json:"bonus_type"`

	SourceMemberID *uint   `gorm:"index" json:"source_member_id"`
	SourceOrderID  *uint   `gorm:"index" json:"source_order_id"`
	PeriodID       uint    `gorm:"not null;index" json:"period_id"`
	LevelDepth     *int    `json:"level_depth"`
	RankCode       *string `gorm:"size:30;index:idx_commission_rank_once,unique" json:"rank_code"`

	AmountVN     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount_vn"` // base currency
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`    // recipient currency
	Currency     string          `gorm:"size:3;not null" json:"currency"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(20,6);not null;default:1" json:"exchange_rate"`

	Status string     `gorm:"size:20;not null;index;default:'PENDING'" json:"status"`
	PaidAt *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (Commission) TableName() string { return "commissions" }
