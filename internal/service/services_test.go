package service

import (
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"redvital/internal/database"
	"redvital/internal/domain"
	"redvital/internal/models"
	"redvital/internal/repository"
	"redvital/pkg/exchange"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// env wires the full service stack onto a throwaway sqlite database.
type env struct {
	db   *gorm.DB
	plan *domain.Plan

	memberRepo     *repository.MemberRepository
	genealogyRepo  *repository.GenealogyRepository
	productRepo    *repository.ProductRepository
	orderRepo      *repository.OrderRepository
	commissionRepo *repository.CommissionRepository
	periodRepo     *repository.PeriodRepository
	rankRepo       *repository.RankRepository
	walletRepo     *repository.WalletRepository

	rankSvc       *RankService
	commissionSvc *CommissionService
	settlementSvc *SettlementService
	orderSvc      *OrderService
	paymentSvc    *PaymentService
	periodSvc     *PeriodService
}

// testRateMXN keeps converted amounts easy to compute by hand.
var testRateMXN = decimal.NewFromInt(20)

func newTestEnv(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	plan := domain.DefaultPlan()
	converter := exchange.NewTableConverter(map[string][]exchange.DatedRate{
		"MXN": {{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Rate: testRateMXN}},
	})

	e := &env{
		db:             db,
		plan:           plan,
		memberRepo:     repository.NewMemberRepository(db),
		genealogyRepo:  repository.NewGenealogyRepository(db),
		productRepo:    repository.NewProductRepository(db),
		orderRepo:      repository.NewOrderRepository(db),
		commissionRepo: repository.NewCommissionRepository(db),
		periodRepo:     repository.NewPeriodRepository(db),
		rankRepo:       repository.NewRankRepository(db),
		walletRepo:     repository.NewWalletRepository(db),
	}
	e.rankSvc = NewRankService(plan, e.memberRepo, e.rankRepo)
	e.commissionSvc = NewCommissionService(plan, converter, e.genealogyRepo, e.memberRepo, e.commissionRepo, e.rankSvc, log)
	e.settlementSvc = NewSettlementService(db, e.commissionRepo, e.walletRepo, log)
	e.orderSvc = NewOrderService(e.orderRepo, e.productRepo, e.memberRepo, converter)
	e.paymentSvc = NewPaymentService(db, e.orderRepo, e.memberRepo, e.walletRepo, e.genealogyRepo, e.periodRepo, e.rankSvc, e.commissionSvc, e.settlementSvc, log)
	e.periodSvc = NewPeriodService(db, plan, e.periodRepo, e.commissionRepo, e.memberRepo, e.commissionSvc, e.settlementSvc, nil, log)
	return e
}

// addMember registers a member the way AuthService does: member row,
// genealogy edges and an empty wallet.
func (e *env) addMember(t *testing.T, name, currency string, sponsor *models.Member) *models.Member {
	t.Helper()
	m := &models.Member{
		Email:    fmt.Sprintf("%s@test.local", name),
		Name:     name,
		Role:     domain.RoleMember,
		Country:  "MX",
		Currency: currency,
	}
	if sponsor != nil {
		m.SponsorID = &sponsor.ID
	}
	require.NoError(t, e.memberRepo.Create(e.db, m))
	require.NoError(t, e.genealogyRepo.AddMember(e.db, m.ID, m.SponsorID))
	require.NoError(t, e.walletRepo.Create(e.db, &models.Wallet{MemberID: m.ID, Currency: currency}))
	return m
}

// setRank records a rank for the member as of the period, the way a real
// promotion would.
func (e *env) setRank(t *testing.T, m *models.Member, code string, periodID uint) {
	t.Helper()
	spec, ok := e.plan.RankByCode(code)
	require.True(t, ok)
	require.NoError(t, e.rankRepo.AppendHistory(e.db, &models.RankHistory{
		MemberID:   m.ID,
		RankCode:   spec.Code,
		Position:   spec.Position,
		PeriodID:   periodID,
		AchievedAt: time.Now(),
	}))
	require.NoError(t, e.memberRepo.UpdateRankCode(e.db, m.ID, spec.Code))
	m.RankCode = spec.Code
}

func (e *env) ensurePeriod(t *testing.T, at time.Time) *models.Period {
	t.Helper()
	p, err := e.periodRepo.EnsureForMonth(e.db, at)
	require.NoError(t, err)
	return p
}

// confirmedOrder persists an order with one line, already in the state the
// commission engine sees it: totals set and line snapshots frozen.
func (e *env) confirmedOrder(t *testing.T, buyer *models.Member, vn, pv int64, isKit bool) *models.Order {
	t.Helper()
	order := &models.Order{
		MemberID:    buyer.ID,
		Status:      domain.OrderStatusPaymentConfirmed,
		Currency:    buyer.Currency,
		TotalAmount: decimal.NewFromInt(pv),
		TotalPV:     decimal.NewFromInt(pv),
		TotalVN:     decimal.NewFromInt(vn),
		Lines: []models.OrderLine{{
			ProductID:  1,
			Name:       "test product",
			IsKit:      isKit,
			Quantity:   1,
			UnitPrice:  decimal.NewFromInt(pv),
			UnitPV:     decimal.NewFromInt(pv),
			UnitVN:     decimal.NewFromInt(vn),
			TotalPrice: decimal.NewFromInt(pv),
			TotalPV:    decimal.NewFromInt(pv),
			TotalVN:    decimal.NewFromInt(vn),
		}},
	}
	require.NoError(t, e.orderRepo.Create(order))
	return order
}

// byBonus indexes commission rows by type for assertions.
func byBonus(rows []models.Commission) map[domain.BonusType][]models.Commission {
	out := make(map[domain.BonusType][]models.Commission)
	for _, c := range rows {
		out[c.BonusType] = append(out[c.BonusType], c)
	}
	return out
}
