package service

import (
	"errors"
	"fmt"
	"time"

	"redvital/internal/domain"
	"redvital/internal/models"
	"redvital/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPayable = errors.New("order is not awaiting payment")
)

// payAsYouGo bonus types are settled inside the payment transaction; the
// rest stay PENDING until period close.
var payAsYouGo = map[domain.BonusType]bool{
	domain.BonusDirect:          true,
	domain.BonusFastStart:       true,
	domain.BonusCashback:        true,
	domain.BonusLoyalty:         true,
	domain.BonusRankAchievement: true,
}

// PaymentService is the confirmation entry point: one transaction that locks
// the order, debits the buyer's wallet, rolls volumes up the genealogy,
// re-evaluates rank and runs the commission engine. Any failure rolls the
// whole payment back; money never moves without the matching volume and
// commission writes.
type PaymentService struct {
	db            *gorm.DB
	orderRepo     *repository.OrderRepository
	memberRepo    *repository.MemberRepository
	walletRepo    *repository.WalletRepository
	genealogyRepo *repository.GenealogyRepository
	periodRepo    *repository.PeriodRepository
	rankSvc       *RankService
	commissionSvc *CommissionService
	settlementSvc *SettlementService
	log           *logrus.Logger
	now           func() time.Time
}

func NewPaymentService(
	db *gorm.DB,
	orderRepo *repository.OrderRepository,
	memberRepo *repository.MemberRepository,
	walletRepo *repository.WalletRepository,
	genealogyRepo *repository.GenealogyRepository,
	periodRepo *repository.PeriodRepository,
	rankSvc *RankService,
	commissionSvc *CommissionService,
	settlementSvc *SettlementService,
	log *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		db:            db,
		orderRepo:     orderRepo,
		memberRepo:    memberRepo,
		walletRepo:    walletRepo,
		genealogyRepo: genealogyRepo,
		periodRepo:    periodRepo,
		rankSvc:       rankSvc,
		commissionSvc: commissionSvc,
		settlementSvc: settlementSvc,
		log:           log,
		now:           time.Now,
	}
}

// OnPaymentConfirmed confirms the order identified by orderID, using
// paymentRef as the idempotency key. A re-delivery for an already confirmed
// order is a benign no-op. On any other failure the order stays retriable
// and the wallet untouched.
func (s *PaymentService) OnPaymentConfirmed(orderID uint, paymentRef string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.LockByID(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.PaymentRef != nil {
			return nil // already confirmed, duplicate trigger
		}
		if order.Status != domain.OrderStatusPendingPayment {
			return ErrOrderNotPayable
		}

		buyer, err := s.memberRepo.LockByID(tx, order.MemberID)
		if err != nil {
			return err
		}

		debitRef := fmt.Sprintf("order_%d", order.ID)
		if err := s.walletRepo.Debit(tx, buyer.ID, order.TotalAmount, order.Currency, domain.WalletTxTypeOrderDebit, debitRef); err != nil {
			return err
		}

		confirmedAt := s.now()
		period, err := s.periodRepo.EnsureForMonth(tx, confirmedAt)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":               domain.OrderStatusPaymentConfirmed,
			"payment_ref":          paymentRef,
			"payment_confirmed_at": confirmedAt,
			"period_id":            period.ID,
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}
		order.Status = domain.OrderStatusPaymentConfirmed
		order.PaymentRef = &paymentRef
		order.PaymentConfirmedAt = &confirmedAt
		order.PeriodID = &period.ID

		// Volume rollup: the buyer's PV counts toward their own group volume
		// and every ancestor's.
		if err := s.memberRepo.AddPersonalVolume(tx, buyer.ID, order.TotalPV); err != nil {
			return err
		}
		ancestors, err := s.genealogyRepo.AncestorIDs(buyer.ID)
		if err != nil {
			return err
		}
		if err := s.memberRepo.AddGroupVolume(tx, ancestors, order.TotalPV); err != nil {
			return err
		}
		buyer.PersonalVolume = buyer.PersonalVolume.Add(order.TotalPV)
		buyer.GroupVolume = buyer.GroupVolume.Add(order.TotalPV)
		buyer.ConfirmedOrders++

		change, err := s.rankSvc.EvaluateAndPromote(tx, buyer, period.ID)
		if err != nil {
			return err
		}

		created := s.commissionSvc.ProcessOrder(tx, order, buyer, period.ID)
		if change != nil {
			achievement, err := s.commissionSvc.OnRankAchieved(tx, buyer, change, period.ID)
			if err != nil {
				s.log.WithFields(logrus.Fields{"member": buyer.ID, "rank": change.To}).
					WithError(err).Error("achievement bonus failed, skipping")
			} else if achievement != nil {
				created = append(created, *achievement)
			}
		}

		for _, c := range created {
			if !payAsYouGo[c.BonusType] {
				continue
			}
			if err := s.settlementSvc.DepositTx(tx, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"order": orderID}).Info("payment confirmed")
	return nil
}
