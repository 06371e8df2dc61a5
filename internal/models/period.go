package models

import "time"

// Period is one calendar-month accounting window. At most one period is open
// (ClosedAt nil and EndsAt in the future); closing a period immediately opens
// the next one.
type Period struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Code     string     `gorm:"uniqueIndex;size:7;not null" json:"code"` // e.g. 2026-08
	StartsAt time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time  `gorm:"not null" json:"ends_at"`
	ClosedAt *time.Time `gorm:"index" json:"closed_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (Period) TableName() string { return "periods" }
