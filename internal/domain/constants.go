package domain

// BaseCurrency is the currency all point and business volumes are denominated
// in. Commission amounts are converted from it into the recipient's currency.
const BaseCurrency = "USD"

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// Order lifecycle. PAYMENT_CONFIRMED is the sole trigger for commission
// computation; an order never re-triggers it.
const (
	OrderStatusDraft            = "DRAFT"
	OrderStatusPendingPayment   = "PENDING_PAYMENT"
	OrderStatusPaymentConfirmed = "PAYMENT_CONFIRMED"
	OrderStatusProcessing       = "PROCESSING"
	OrderStatusShipped          = "SHIPPED"
	OrderStatusDelivered        = "DELIVERED"
	OrderStatusCancelled        = "CANCELLED"
	OrderStatusRefunded         = "REFUNDED"
)

const (
	CommissionStatusPending   = "PENDING"
	CommissionStatusPaid      = "PAID"
	CommissionStatusCancelled = "CANCELLED"
)

// BonusType is the closed set of commission kinds. The commission engine
// switches exhaustively over these; adding a kind means adding a handler.
type BonusType string

const (
	BonusDirect          BonusType = "DIRECT"
	BonusFastStart       BonusType = "FAST_START"
	BonusUnilevel        BonusType = "UNILEVEL"
	BonusMatching        BonusType = "MATCHING"
	BonusRankAchievement BonusType = "RANK_ACHIEVEMENT"
	BonusCar             BonusType = "CAR"
	BonusTravel          BonusType = "TRAVEL"
	BonusCashback        BonusType = "CASHBACK"
	BonusLoyalty         BonusType = "LOYALTY"
)

const (
	WalletTxTypeTopUp      = "TOP_UP"
	WalletTxTypeOrderDebit = "ORDER_DEBIT"
	WalletTxTypeCommission = "COMMISSION"
	WalletTxTypeRefund     = "REFUND"
)
