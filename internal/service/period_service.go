package service

import (
	"context"
	"errors"
	"time"

	"redvital/internal/domain"
	"redvital/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Locker serializes period close across instances. The redislock-backed
// implementation lives in internal/scheduler; nil means rely on the
// closed_at guarded update alone.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// PeriodService owns the accounting calendar: it closes ended periods, pays
// out their pending commissions, opens the next month and resets every
// member's per-period accumulators.
type PeriodService struct {
	db             *gorm.DB
	plan           *domain.Plan
	periodRepo     *repository.PeriodRepository
	commissionRepo *repository.CommissionRepository
	memberRepo     *repository.MemberRepository
	commissionSvc  *CommissionService
	settlementSvc  *SettlementService
	locker         Locker
	log            *logrus.Logger
	now            func() time.Time
}

func NewPeriodService(
	db *gorm.DB,
	plan *domain.Plan,
	periodRepo *repository.PeriodRepository,
	commissionRepo *repository.CommissionRepository,
	memberRepo *repository.MemberRepository,
	commissionSvc *CommissionService,
	settlementSvc *SettlementService,
	locker Locker,
	log *logrus.Logger,
) *PeriodService {
	return &PeriodService{
		db:             db,
		plan:           plan,
		periodRepo:     periodRepo,
		commissionRepo: commissionRepo,
		memberRepo:     memberRepo,
		commissionSvc:  commissionSvc,
		settlementSvc:  settlementSvc,
		locker:         locker,
		log:            log,
		now:            time.Now,
	}
}

// EnsureCurrentPeriod opens the period covering now if it does not exist yet.
// Called at startup so confirmations always find a period to attribute to.
func (s *PeriodService) EnsureCurrentPeriod() error {
	_, err := s.periodRepo.EnsureForMonth(s.db, s.now())
	return err
}

// CloseCurrentPeriod closes the oldest period whose window has ended.
// Idempotent: nothing to close is a successful no-op, so a duplicate trigger
// (or a second scheduler instance) changes nothing.
func (s *PeriodService) CloseCurrentPeriod(ctx context.Context) error {
	if s.locker == nil {
		return s.close()
	}
	return s.locker.WithLock(ctx, "period:close", s.close)
}

func (s *PeriodService) close() error {
	for {
		p, err := s.periodRepo.OldestClosable(s.now())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := s.closePeriod(p.ID); err != nil {
			return err
		}
	}
}

// closePeriod runs the close for one period as a single transaction: stamp
// closed_at (guarded, so a concurrent closer aborts cleanly), grant the
// rank-qualification monthly bonuses, settle every pending commission of the
// period, open the next month and zero all accumulators.
func (s *PeriodService) closePeriod(periodID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.periodRepo.GetByID(periodID)
		if err != nil {
			return err
		}
		closed, err := s.periodRepo.CloseCAS(tx, p.ID, s.now())
		if err != nil {
			return err
		}
		if !closed {
			return nil // lost the race, the other closer does the work
		}
		granted, err := s.commissionSvc.GrantPeriodBonuses(tx, p.ID)
		if err != nil {
			return err
		}
		pending, err := s.commissionRepo.PendingIDsByPeriod(tx, p.ID)
		if err != nil {
			return err
		}
		for _, id := range pending {
			if err := s.settlementSvc.DepositTx(tx, id); err != nil {
				return err
			}
		}
		if _, err := s.periodRepo.EnsureForMonth(tx, p.EndsAt); err != nil {
			return err
		}
		if err := s.memberRepo.ResetAccumulators(tx); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"period":  p.Code,
			"settled": len(pending),
			"granted": len(granted),
		}).Info("period closed")
		return nil
	})
}
