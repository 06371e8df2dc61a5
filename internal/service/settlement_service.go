package service

import (
	"errors"
	"fmt"
	"time"

	"redvital/internal/domain"
	"redvital/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SettlementService moves PENDING commissions into member balances exactly
// once. The pending->paid flip is a guarded compare-and-set and the ledger
// reference is unique, so a commission can never be deposited twice even
// under concurrent callers.
type SettlementService struct {
	db             *gorm.DB
	commissionRepo *repository.CommissionRepository
	walletRepo     *repository.WalletRepository
	log            *logrus.Logger
	now            func() time.Time
}

func NewSettlementService(db *gorm.DB, commissionRepo *repository.CommissionRepository, walletRepo *repository.WalletRepository, log *logrus.Logger) *SettlementService {
	return &SettlementService{
		db:             db,
		commissionRepo: commissionRepo,
		walletRepo:     walletRepo,
		log:            log,
		now:            time.Now,
	}
}

// DepositCommission settles one commission in its own transaction.
func (s *SettlementService) DepositCommission(commissionID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.DepositTx(tx, commissionID)
	})
}

// DepositTx settles one commission inside the caller's transaction. Already
// paid or cancelled rows are a benign no-op.
func (s *SettlementService) DepositTx(tx *gorm.DB, commissionID uint) error {
	c, err := s.commissionRepo.LockByID(tx, commissionID)
	if err != nil {
		return err
	}
	if c.Status != domain.CommissionStatusPending {
		return nil
	}
	flipped, err := s.commissionRepo.MarkPaidCAS(tx, c.ID, s.now())
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}
	ref := fmt.Sprintf("commission_%d", c.ID)
	err = s.walletRepo.Credit(tx, c.MemberID, c.Amount, c.Currency, domain.WalletTxTypeCommission, ref)
	if errors.Is(err, repository.ErrDuplicateReference) {
		s.log.WithFields(logrus.Fields{"commission": c.ID}).
			Error("ledger entry exists for a pending commission")
		return err
	}
	return err
}
