package service

import (
	"fmt"
	"time"

	"redvital/internal/domain"
	"redvital/internal/models"
	"redvital/internal/repository"
	"redvital/pkg/exchange"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

// CommissionService is the rule engine: given a confirmed order it computes
// and records a commission row for every eligible bonus type. A failure in
// one bonus type is logged, its partial rows are rolled back, and the type
// yields nothing; the sibling types still run. The surrounding payment
// transaction is the caller's.
type CommissionService struct {
	plan           *domain.Plan
	converter      exchange.Converter
	genealogyRepo  *repository.GenealogyRepository
	memberRepo     *repository.MemberRepository
	commissionRepo *repository.CommissionRepository
	rankSvc        *RankService
	log            *logrus.Logger
	now            func() time.Time
}

func NewCommissionService(
	plan *domain.Plan,
	converter exchange.Converter,
	genealogyRepo *repository.GenealogyRepository,
	memberRepo *repository.MemberRepository,
	commissionRepo *repository.CommissionRepository,
	rankSvc *RankService,
	log *logrus.Logger,
) *CommissionService {
	return &CommissionService{
		plan:           plan,
		converter:      converter,
		genealogyRepo:  genealogyRepo,
		memberRepo:     memberRepo,
		commissionRepo: commissionRepo,
		rankSvc:        rankSvc,
		log:            log,
		now:            time.Now,
	}
}

type commissionOpts struct {
	sourceMemberID *uint
	sourceOrderID  *uint
	levelDepth     *int
	rankCode       *string
}

// createCommission converts amountVN into the recipient's currency and writes
// a PENDING row.
func (s *CommissionService) createCommission(tx *gorm.DB, recipient *models.Member, bonusType domain.BonusType, amountVN decimal.Decimal, periodID uint, opts commissionOpts) (*models.Commission, error) {
	converted, rate, err := s.converter.Convert(amountVN, domain.BaseCurrency, recipient.Currency, s.now())
	if err != nil {
		return nil, fmt.Errorf("convert %s to %s: %w", domain.BaseCurrency, recipient.Currency, err)
	}
	c := &models.Commission{
		MemberID:       recipient.ID,
		BonusType:      bonusType,
		SourceMemberID: opts.sourceMemberID,
		SourceOrderID:  opts.sourceOrderID,
		PeriodID:       periodID,
		LevelDepth:     opts.levelDepth,
		RankCode:       opts.rankCode,
		AmountVN:       amountVN,
		Amount:         converted,
		Currency:       recipient.Currency,
		ExchangeRate:   rate,
		Status:         domain.CommissionStatusPending,
	}
	if err := s.commissionRepo.Create(tx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ProcessOrder runs every order-triggered bonus type for a freshly confirmed
// order and returns the commission rows written. Each bonus type runs in its
// own savepoint: an error partway through a multi-ancestor walk rolls back
// every row that type already wrote, so a failed type contributes nothing.
// Unilevel rows are fully written before matching runs, because matching
// reads them back in the same transaction.
func (s *CommissionService) ProcessOrder(tx *gorm.DB, order *models.Order, buyer *models.Member, periodID uint) []models.Commission {
	var created []models.Commission
	run := func(bonus domain.BonusType, fn func(sp *gorm.DB) ([]models.Commission, error)) {
		var rows []models.Commission
		err := tx.Transaction(func(sp *gorm.DB) error {
			var err error
			rows, err = fn(sp)
			return err
		})
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"bonus":  bonus,
				"order":  order.ID,
				"member": buyer.ID,
			}).WithError(err).Error("bonus calculation failed, skipping")
			return
		}
		created = append(created, rows...)
	}
	run(domain.BonusDirect, func(sp *gorm.DB) ([]models.Commission, error) { return s.directBonus(sp, order, buyer, periodID) })
	run(domain.BonusFastStart, func(sp *gorm.DB) ([]models.Commission, error) { return s.fastStartBonus(sp, order, buyer, periodID) })
	run(domain.BonusUnilevel, func(sp *gorm.DB) ([]models.Commission, error) { return s.unilevelBonus(sp, order, buyer, periodID) })
	run(domain.BonusMatching, func(sp *gorm.DB) ([]models.Commission, error) { return s.matchingBonus(sp, order, buyer, periodID) })
	run(domain.BonusCashback, func(sp *gorm.DB) ([]models.Commission, error) { return s.cashbackBonus(sp, order, buyer, periodID) })
	run(domain.BonusLoyalty, func(sp *gorm.DB) ([]models.Commission, error) { return s.loyaltyBonus(sp, order, buyer, periodID) })
	return created
}

// directBonus pays the buyer's sponsor a fixed percentage of the order's VN.
// Silently skipped when the buyer has no sponsor or the order carries no VN.
func (s *CommissionService) directBonus(tx *gorm.DB, order *models.Order, buyer *models.Member, periodID uint) ([]models.Commission, error) {
	if buyer.SponsorID == nil || order.TotalVN.IsZero() {
		return nil, nil
	}
	sponsor, err := s.memberRepo.GetByID(*buyer.SponsorID)
	if err != nil {
		return nil, err
	}
	amount := order.TotalVN.Mul(s.plan.DirectPercent).Div(oneHundred).Round(2)
	depth := 1
	c, err := s.createCommission(tx, sponsor, domain.BonusDirect, amount, periodID, commissionOpts{
		sourceMemberID: &buyer.ID,
		sourceOrderID:  &order.ID,
		levelDepth:     &depth,
	})
	if err != nil {
		return nil, err
	}
	return []models.Commission{*c}, nil
}

// fastStartBonus pays level percentages of the order's kit point volume to
// the buyer's upline, depth 1 through 3. Kits in one order are aggregated
// before the percentage is applied. Stops early on a short upline.
func (s *CommissionService) fastStartBonus(tx *gorm.DB, order *models.Order, buyer *models.Member, periodID uint) ([]models.Commission, error) {
	kitPV := decimal.Zero
	for _, line := range order.Lines {
		if line.IsKit {
			kitPV = kitPV.Add(line.TotalPV)
		}
	}
	if kitPV.IsZero() {
		return nil, nil
	}
	upline, err := s.genealogyRepo.GetUpline(buyer.ID, len(s.plan.FastStartPercents))
	if err != nil {
		return nil, err
	}
	var created []models.Commission
	for _, edge := range upline {
		pct := s.plan.FastStartPercents[edge.Depth-1]
		amount := kitPV.Mul(pct).Div(oneHundred).Round(2)
		recipient, err := s.memberRepo.GetByID(edge.AncestorID)
		if err != nil {
			return created, err
		}
		depth := edge.Depth
		c, err := s.createCommission(tx, recipient, domain.BonusFastStart, amount, periodID, commissionOpts{
			sourceMemberID: &buyer.ID,
			sourceOrderID:  &order.ID,
			levelDepth:     &depth,
		})
		if err != nil {
			return created, err
		}
		created = append(created, *c)
	}
	return created, nil
}

// unilevelBonus walks the buyer's entire upline once, paying each ancestor
// whose rank reaches down far enough. Cost is bounded by ancestor count, not
// network size: the bonus is computed incrementally per order.
func (s *CommissionService) unilevelBonus(tx *gorm.DB, order *models.Order, buyer *models.Member, periodID uint) ([]models.Commission, error) {
	if order.TotalVN.IsZero() {
		return nil, nil
	}
	upline, err := s.genealogyRepo.GetUpline(buyer.ID, 0)
	if err != nil {
		return nil, err
	}
	var created []models.Commission
	for _, edge := range upline {
		rank, ok, err := s.rankSvc.CurrentRank(tx, edge.AncestorID, periodID)
		if err != nil {
			return created, err
		}
		if !ok {
			continue // unranked ancestors earn no level bonus
		}
		pct, ok := rank.UnilevelPercentAt(edge.Depth)
		if !ok {
			continue // rank does not reach this deep
		}
		amount := order.TotalVN.Mul(pct).Div(oneHundred).Round(2)
		recipient, err := s.memberRepo.GetByID(edge.AncestorID)
		if err != nil {
			return created, err
		}
		depth := edge.Depth
		c, err := s.createCommission(tx, recipient, domain.BonusUnilevel, amount, periodID, commissionOpts{
			sourceMemberID: &buyer.ID,
			sourceOrderID:  &order.ID,
			levelDepth:     &depth,
		})
		if err != nil {
			return created, err
		}
		created = append(created, *c)
	}
	return created, nil
}

// matchingBonus pays ambassador-tier ancestors a percentage of the unilevel
// commissions their depth-1 direct line just earned from this order. It runs
// after unilevelBonus and reads those rows back within the same transaction.
// Only the level-1 matching percentage is applied; the plan's deeper match
// levels are deliberately unused.
func (s *CommissionService) matchingBonus(tx *gorm.DB, order *models.Order, buyer *models.Member, periodID uint) ([]models.Commission, error) {
	upline, err := s.genealogyRepo.GetUpline(buyer.ID, 0)
	if err != nil {
		return nil, err
	}
	var created []models.Commission
	for _, edge := range upline {
		rank, ok, err := s.rankSvc.CurrentRank(tx, edge.AncestorID, periodID)
		if err != nil {
			return created, err
		}
		if !ok || !rank.Ambassador() {
			continue
		}
		directs, err := s.genealogyRepo.GetLevelMembers(edge.AncestorID, 1)
		if err != nil {
			return created, err
		}
		unilevels, err := s.commissionRepo.UnilevelForOrder(tx, order.ID, directs)
		if err != nil {
			return created, err
		}
		if len(unilevels) == 0 {
			continue
		}
		recipient, err := s.memberRepo.GetByID(edge.AncestorID)
		if err != nil {
			return created, err
		}
		matchPct := rank.MatchingPercents[0]
		for _, u := range unilevels {
			amount := u.AmountVN.Mul(matchPct).Div(oneHundred).Round(2)
			if amount.IsZero() {
				continue
			}
			src := u.MemberID
			depth := 1
			c, err := s.createCommission(tx, recipient, domain.BonusMatching, amount, periodID, commissionOpts{
				sourceMemberID: &src,
				sourceOrderID:  &order.ID,
				levelDepth:     &depth,
			})
			if err != nil {
				return created, err
			}
			created = append(created, *c)
		}
	}
	return created, nil
}

// cashbackBonus credits the buyer a rank-dependent percentage of their own
// order's VN.
func (s *CommissionService) cashbackBonus(tx *gorm.DB, order *models.Order, buyer *models.Member, periodID uint) ([]models.Commission, error) {
	rank, ok := s.plan.RankByCode(buyer.RankCode)
	if !ok || rank.CashbackPercent.IsZero() || order.TotalVN.IsZero() {
		return nil, nil
	}
	amount := order.TotalVN.Mul(rank.CashbackPercent).Div(oneHundred).Round(2)
	c, err := s.createCommission(tx, buyer, domain.BonusCashback, amount, periodID, commissionOpts{
		sourceOrderID: &order.ID,
	})
	if err != nil {
		return nil, err
	}
	return []models.Commission{*c}, nil
}

// loyaltyBonus grants a fixed credit on every Nth confirmed order.
func (s *CommissionService) loyaltyBonus(tx *gorm.DB, order *models.Order, buyer *models.Member, periodID uint) ([]models.Commission, error) {
	interval := s.plan.LoyaltyOrderInterval
	if interval <= 0 || buyer.ConfirmedOrders == 0 || buyer.ConfirmedOrders%interval != 0 {
		return nil, nil
	}
	c, err := s.createCommission(tx, buyer, domain.BonusLoyalty, s.plan.LoyaltyBonus, periodID, commissionOpts{
		sourceOrderID: &order.ID,
	})
	if err != nil {
		return nil, err
	}
	return []models.Commission{*c}, nil
}

// OnRankAchieved pays the one-time achievement bonus for a promotion. The
// entry rank is only payable within the plan's registration window; the
// unique (member, rank) index makes a double grant impossible even under
// races.
func (s *CommissionService) OnRankAchieved(tx *gorm.DB, member *models.Member, change *RankChange, periodID uint) (*models.Commission, error) {
	rank, ok := s.plan.RankByCode(change.To)
	if !ok {
		return nil, fmt.Errorf("unknown rank %q", change.To)
	}
	already, err := s.commissionRepo.HasAchievement(tx, member.ID, rank.Code)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}
	if rank.Code == s.plan.EntryRank().Code {
		deadline := member.CreatedAt.AddDate(0, 0, s.plan.EntryRankWindowDays)
		if s.now().After(deadline) {
			s.log.WithFields(logrus.Fields{"member": member.ID, "rank": rank.Code}).
				Info("entry rank achievement window elapsed, bonus forfeited")
			return nil, nil
		}
	}
	amountVN, inMemberCurrency := rank.AchievementBonus[member.Currency]
	if inMemberCurrency {
		// Amount is already denominated in the member's currency.
		code := rank.Code
		c := &models.Commission{
			MemberID:     member.ID,
			BonusType:    domain.BonusRankAchievement,
			PeriodID:     periodID,
			RankCode:     &code,
			AmountVN:     rank.AchievementBonus[domain.BaseCurrency],
			Amount:       amountVN,
			Currency:     member.Currency,
			ExchangeRate: decimal.NewFromInt(1),
			Status:       domain.CommissionStatusPending,
		}
		if err := s.commissionRepo.Create(tx, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	code := rank.Code
	return s.createCommission(tx, member, domain.BonusRankAchievement, rank.AchievementBonus[domain.BaseCurrency], periodID, commissionOpts{
		rankCode: &code,
	})
}

// GrantPeriodBonuses records the monthly car bonus and travel fund for every
// member holding a qualifying rank, once per period. Called during close.
func (s *CommissionService) GrantPeriodBonuses(tx *gorm.DB, periodID uint) ([]models.Commission, error) {
	var codes []string
	for _, r := range s.plan.Ranks {
		if !r.CarBonus.IsZero() || !r.TravelFund.IsZero() {
			codes = append(codes, r.Code)
		}
	}
	if len(codes) == 0 {
		return nil, nil
	}
	members, err := s.memberRepo.ListByRankCodes(tx, codes)
	if err != nil {
		return nil, err
	}
	var created []models.Commission
	for i := range members {
		m := &members[i]
		rank, _ := s.plan.RankByCode(m.RankCode)
		grants := []struct {
			bonus  domain.BonusType
			amount decimal.Decimal
		}{
			{domain.BonusCar, rank.CarBonus},
			{domain.BonusTravel, rank.TravelFund},
		}
		for _, g := range grants {
			if g.amount.IsZero() {
				continue
			}
			exists, err := s.commissionRepo.ExistsForMemberPeriodType(tx, m.ID, periodID, g.bonus)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}
			c, err := s.createCommission(tx, m, g.bonus, g.amount, periodID, commissionOpts{})
			if err != nil {
				return created, err
			}
			created = append(created, *c)
		}
	}
	return created, nil
}
