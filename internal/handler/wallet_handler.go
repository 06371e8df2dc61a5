package handler

import (
	"errors"
	"net/http"

	"redvital/internal/domain"
	"redvital/internal/middleware"
	"redvital/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WalletHandler struct {
	db         *gorm.DB
	walletRepo *repository.WalletRepository
}

func NewWalletHandler(db *gorm.DB, walletRepo *repository.WalletRepository) *WalletHandler {
	return &WalletHandler{db: db, walletRepo: walletRepo}
}

// Balance handles GET /me/wallet.
func (h *WalletHandler) Balance(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	w, err := h.walletRepo.GetByMemberID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":  w.Balance,
		"currency": w.Currency,
	})
}

// Transactions handles GET /me/wallet/transactions.
func (h *WalletHandler) Transactions(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	limit, offset := pagination(c)
	list, err := h.walletRepo.ListTransactions(memberID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// TopUpWebhook handles POST /webhooks/topup: a payment provider notifies a
// completed deposit. Idempotent per provider reference.
func (h *WalletHandler) TopUpWebhook(c *gin.Context) {
	var in struct {
		MemberID    uint            `json:"member_id" binding:"required"`
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Currency    string          `json:"currency" binding:"required,len=3"`
		ProviderRef string          `json:"provider_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		return h.walletRepo.Credit(tx, in.MemberID, in.Amount, in.Currency, domain.WalletTxTypeTopUp, "topup_"+in.ProviderRef)
	})
	if errors.Is(err, repository.ErrDuplicateReference) {
		c.JSON(http.StatusOK, gin.H{"status": "already processed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "top-up failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "credited"})
}
