package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rank mirrors the plan's tiers in the store so historical data stays
// queryable; the engine itself reads thresholds and percentage tables from
// the in-memory plan. Seeded at startup.
type Rank struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"uniqueIndex;size:30;not null" json:"code"`
	Name       string          `gorm:"size:60;not null" json:"name"`
	Position   int             `gorm:"uniqueIndex;not null" json:"position"`
	RequiredPV decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"required_pv"`
	RequiredGV decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"required_gv"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rank) TableName() string { return "ranks" }

// RankHistory is the append-only promotion log. CurrentRank(member, period)
// is the newest entry with PeriodID <= period.
type RankHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MemberID   uint      `gorm:"not null;index:idx_rank_history_member_period" json:"member_id"`
	RankCode   string    `gorm:"size:30;not null" json:"rank_code"`
	Position   int       `gorm:"not null" json:"position"`
	PeriodID   uint      `gorm:"not null;index:idx_rank_history_member_period" json:"period_id"`
	AchievedAt time.Time `gorm:"not null" json:"achieved_at"`
}

func (RankHistory) TableName() string { return "rank_histories" }
