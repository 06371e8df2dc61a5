package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a member purchase. PaymentRef is the idempotency key: it is set
// exactly once, together with PaymentConfirmedAt and the attributed period,
// inside the payment transaction.
type Order struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	MemberID uint   `gorm:"not null;index" json:"member_id"`
	Status   string `gorm:"size:20;not null;index" json:"status"`

	Currency    string          `gorm:"size:3;not null" json:"currency"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // member currency
	TotalPV     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_pv"`
	TotalVN     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_vn"`

	PeriodID           *uint      `gorm:"index" json:"period_id"`
	PaymentRef         *string    `gorm:"uniqueIndex;size:64" json:"payment_ref"`
	PaymentConfirmedAt *time.Time `json:"payment_confirmed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Member Member      `gorm:"foreignKey:MemberID" json:"-"`
	Lines  []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderLine freezes unit price/PV/VN at purchase time; later catalog changes
// never affect historical orders.
type OrderLine struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"size:160;not null" json:"name"`
	IsKit     bool   `gorm:"not null;default:false" json:"is_kit"`
	Quantity  int    `gorm:"not null" json:"quantity"`

	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_price"`
	UnitPV    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_pv"`
	UnitVN    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_vn"`

	TotalPrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_price"`
	TotalPV    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_pv"`
	TotalVN    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_vn"`

	CreatedAt time.Time `json:"created_at"`
}

func (OrderLine) TableName() string { return "order_lines" }
