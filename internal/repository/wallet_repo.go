package repository

import (
	"errors"
	"strings"

	"redvital/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrDuplicateReference  = errors.New("duplicate ledger reference")
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Create(tx *gorm.DB, w *models.Wallet) error {
	return tx.Create(w).Error
}

func (r *WalletRepository) GetByMemberID(memberID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("member_id = ?", memberID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// lockByMemberID loads the wallet under a row lock; all balance mutations go
// through this so concurrent credits/debits serialize on the wallet row.
func (r *WalletRepository) lockByMemberID(tx *gorm.DB, memberID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := forUpdate(tx).Where("member_id = ?", memberID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit adds amount to the wallet and appends a ledger entry, idempotent per
// reference: replaying the same reference returns ErrDuplicateReference with
// no balance change (callers treat it as a benign no-op).
func (r *WalletRepository) Credit(tx *gorm.DB, memberID uint, amount decimal.Decimal, currency, txType, reference string) error {
	w, err := r.lockByMemberID(tx, memberID)
	if err != nil {
		return err
	}
	entry := models.WalletTransaction{
		MemberID:  memberID,
		Amount:    amount,
		Currency:  currency,
		Type:      txType,
		Reference: reference,
	}
	if err := tx.Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return err
	}
	return tx.Model(w).Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// Debit subtracts amount after a balance check under the row lock.
func (r *WalletRepository) Debit(tx *gorm.DB, memberID uint, amount decimal.Decimal, currency, txType, reference string) error {
	w, err := r.lockByMemberID(tx, memberID)
	if err != nil {
		return err
	}
	if w.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	entry := models.WalletTransaction{
		MemberID:  memberID,
		Amount:    amount.Neg(),
		Currency:  currency,
		Type:      txType,
		Reference: reference,
	}
	if err := tx.Create(&entry).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return err
	}
	return tx.Model(w).Update("balance", gorm.Expr("balance - ?", amount)).Error
}

func (r *WalletRepository) ListTransactions(memberID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var list []models.WalletTransaction
	err := r.db.Where("member_id = ?", memberID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// isUniqueViolation matches duplicate-key errors across mysql and the sqlite
// test driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}
