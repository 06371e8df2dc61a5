package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Member is a distributor in the network. SponsorID is nil only for the root.
// PersonalVolume and GroupVolume are per-period accumulators, zeroed at period
// close; GroupVolume always includes the member's own PersonalVolume.
type Member struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Name         string `gorm:"size:120;not null" json:"name"`
	Role         string `gorm:"size:20;not null;default:'MEMBER'" json:"role"` // MEMBER | ADMIN

	SponsorID   *uint  `gorm:"index" json:"sponsor_id"`
	SponsorCode string `gorm:"uniqueIndex;size:20;not null" json:"sponsor_code"` // code others register with

	Country  string `gorm:"size:2;not null" json:"country"`
	Currency string `gorm:"size:3;not null" json:"currency"`

	PersonalVolume decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"personal_volume"`
	GroupVolume    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"group_volume"`
	RankCode       string          `gorm:"size:30;not null;default:'';index" json:"rank_code"` // '' = no rank

	ConfirmedOrders int `gorm:"not null;default:0" json:"confirmed_orders"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Sponsor *Member `gorm:"foreignKey:SponsorID" json:"-"`
}

func (Member) TableName() string { return "members" }
