package service

import (
	"testing"
	"time"

	"redvital/internal/domain"
	"redvital/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectBonus_PaysSponsorPercentOfVN(t *testing.T) {
	e := newTestEnv(t)
	root := e.addMember(t, "root", "USD", nil)
	sponsor := e.addMember(t, "sponsor", "USD", root)
	buyer := e.addMember(t, "buyer", "USD", sponsor)
	period := e.ensurePeriod(t, time.Now())
	order := e.confirmedOrder(t, buyer, 1465, 100, false)

	rows, err := e.commissionSvc.directBonus(e.db, order, buyer, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	c := rows[0]
	assert.Equal(t, sponsor.ID, c.MemberID)
	assert.Equal(t, domain.BonusDirect, c.BonusType)
	assert.Equal(t, "366.25", c.Amount.String()) // 25% of 1465
	assert.Equal(t, "366.25", c.AmountVN.String())
	assert.Equal(t, domain.CommissionStatusPending, c.Status)
	require.NotNil(t, c.SourceMemberID)
	assert.Equal(t, buyer.ID, *c.SourceMemberID)
	require.NotNil(t, c.LevelDepth)
	assert.Equal(t, 1, *c.LevelDepth)
}

func TestDirectBonus_NoSponsorNoVN(t *testing.T) {
	e := newTestEnv(t)
	root := e.addMember(t, "root", "USD", nil)
	period := e.ensurePeriod(t, time.Now())

	rows, err := e.commissionSvc.directBonus(e.db, e.confirmedOrder(t, root, 1000, 100, false), root, period.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	buyer := e.addMember(t, "buyer", "USD", root)
	rows, err = e.commissionSvc.directBonus(e.db, e.confirmedOrder(t, buyer, 0, 100, false), buyer, period.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDirectBonus_ConvertsToSponsorCurrency(t *testing.T) {
	e := newTestEnv(t)
	sponsor := e.addMember(t, "sponsor", "MXN", nil)
	buyer := e.addMember(t, "buyer", "USD", sponsor)
	period := e.ensurePeriod(t, time.Now())

	rows, err := e.commissionSvc.directBonus(e.db, e.confirmedOrder(t, buyer, 100, 100, false), buyer, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	c := rows[0]
	assert.Equal(t, "25", c.AmountVN.String())
	assert.Equal(t, "500", c.Amount.String()) // 25 USD at 20 MXN/USD
	assert.Equal(t, "MXN", c.Currency)
	assert.True(t, c.ExchangeRate.Equal(testRateMXN))
}

func TestFastStartBonus_ThreeLevelsOfKitPV(t *testing.T) {
	e := newTestEnv(t)
	a := e.addMember(t, "a", "USD", nil)
	b := e.addMember(t, "b", "USD", a)
	buyer := e.addMember(t, "buyer", "USD", b)
	period := e.ensurePeriod(t, time.Now())
	order := e.confirmedOrder(t, buyer, 800, 1000, true)

	rows, err := e.commissionSvc.fastStartBonus(e.db, order, buyer, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2) // upline is only two deep

	assert.Equal(t, b.ID, rows[0].MemberID)
	assert.Equal(t, "300", rows[0].Amount.String()) // 30% of 1000 kit PV
	assert.Equal(t, a.ID, rows[1].MemberID)
	assert.Equal(t, "100", rows[1].Amount.String()) // 10%
}

func TestFastStartBonus_IgnoresNonKitOrders(t *testing.T) {
	e := newTestEnv(t)
	a := e.addMember(t, "a", "USD", nil)
	buyer := e.addMember(t, "buyer", "USD", a)
	period := e.ensurePeriod(t, time.Now())

	rows, err := e.commissionSvc.fastStartBonus(e.db, e.confirmedOrder(t, buyer, 800, 1000, false), buyer, period.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUnilevelBonus_RankGatesDepth(t *testing.T) {
	e := newTestEnv(t)
	root := e.addMember(t, "root", "USD", nil)
	a := e.addMember(t, "a", "USD", root)
	b := e.addMember(t, "b", "USD", a)
	c := e.addMember(t, "c", "USD", b)
	buyer := e.addMember(t, "buyer", "USD", c)
	period := e.ensurePeriod(t, time.Now())

	e.setRank(t, c, "EMPRENDEDOR", period.ID) // depth 1, one level deep
	e.setRank(t, a, "VISIONARIO", period.ID)  // depth 3, three levels deep
	e.setRank(t, root, "EMPRENDEDOR", period.ID)
	// b stays unranked; root's rank does not reach depth 4

	order := e.confirmedOrder(t, buyer, 1000, 100, false)
	rows, err := e.commissionSvc.unilevelBonus(e.db, order, buyer, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, c.ID, rows[0].MemberID)
	assert.Equal(t, "50", rows[0].Amount.String()) // 5% at depth 1
	require.NotNil(t, rows[0].LevelDepth)
	assert.Equal(t, 1, *rows[0].LevelDepth)

	assert.Equal(t, a.ID, rows[1].MemberID)
	assert.Equal(t, "100", rows[1].Amount.String()) // 10% at depth 3
	require.NotNil(t, rows[1].LevelDepth)
	assert.Equal(t, 3, *rows[1].LevelDepth)
}

func TestUnilevelBonus_DiamondInfiniteDepth(t *testing.T) {
	e := newTestEnv(t)
	period := e.ensurePeriod(t, time.Now())

	top := e.addMember(t, "top", "USD", nil)
	e.setRank(t, top, "EMBAJADOR_DIAMANTE", period.ID)

	prev := top
	for i := 0; i < 10; i++ {
		prev = e.addMember(t, string(rune('a'+i)), "USD", prev)
	}
	// prev (the buyer) is 10 levels below top, past the 9 explicit levels.

	order := e.confirmedOrder(t, prev, 1000, 100, false)
	rows, err := e.commissionSvc.unilevelBonus(e.db, order, prev, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, top.ID, rows[0].MemberID)
	assert.Equal(t, "10", rows[0].Amount.String()) // 1% infinite tier
	require.NotNil(t, rows[0].LevelDepth)
	assert.Equal(t, 10, *rows[0].LevelDepth)
}

func TestProcessOrder_FailedBonusTypeWritesNoRows(t *testing.T) {
	e := newTestEnv(t)
	far := e.addMember(t, "far", "EUR", nil) // EUR is unknown to the test converter
	near := e.addMember(t, "near", "USD", far)
	buyer := e.addMember(t, "buyer", "USD", near)
	period := e.ensurePeriod(t, time.Now())

	e.setRank(t, near, "VISIONARIO", period.ID)
	e.setRank(t, far, "VISIONARIO", period.ID)

	// Unilevel pays near at depth 1, then fails converting far's payout at
	// depth 2. The depth-1 row written before the failure must not survive.
	order := e.confirmedOrder(t, buyer, 1000, 100, false)
	rows := e.commissionSvc.ProcessOrder(e.db, order, buyer, period.ID)
	grouped := byBonus(rows)

	assert.Empty(t, grouped[domain.BonusUnilevel])
	var count int64
	require.NoError(t, e.db.Model(&models.Commission{}).
		Where("bonus_type = ?", domain.BonusUnilevel).Count(&count).Error)
	assert.Zero(t, count)

	// The sponsor's direct bonus is a sibling type and still lands.
	require.Len(t, grouped[domain.BonusDirect], 1)
	assert.Equal(t, near.ID, grouped[domain.BonusDirect][0].MemberID)
	assert.Equal(t, "250", grouped[domain.BonusDirect][0].Amount.String())
}

func TestProcessOrder_MatchingPaysAmbassadorOnDirectLine(t *testing.T) {
	e := newTestEnv(t)
	root := e.addMember(t, "root", "USD", nil)
	a := e.addMember(t, "a", "USD", root)
	buyer := e.addMember(t, "buyer", "USD", a)
	period := e.ensurePeriod(t, time.Now())

	e.setRank(t, root, "EMBAJADOR", period.ID)
	e.setRank(t, a, "VISIONARIO", period.ID)

	order := e.confirmedOrder(t, buyer, 1000, 100, false)
	rows := e.commissionSvc.ProcessOrder(e.db, order, buyer, period.ID)
	grouped := byBonus(rows)

	require.Len(t, grouped[domain.BonusUnilevel], 2)
	require.Len(t, grouped[domain.BonusMatching], 1)

	match := grouped[domain.BonusMatching][0]
	assert.Equal(t, root.ID, match.MemberID)
	// a earned 50 VN at depth 1; root matches 10% of it.
	assert.Equal(t, "5", match.Amount.String())
	require.NotNil(t, match.SourceMemberID)
	assert.Equal(t, a.ID, *match.SourceMemberID)

	// The direct bonus went to a alongside it.
	require.Len(t, grouped[domain.BonusDirect], 1)
	assert.Equal(t, a.ID, grouped[domain.BonusDirect][0].MemberID)
	assert.Equal(t, "250", grouped[domain.BonusDirect][0].Amount.String())
}

func TestCashbackBonus_RankDependent(t *testing.T) {
	e := newTestEnv(t)
	buyer := e.addMember(t, "buyer", "USD", nil)
	period := e.ensurePeriod(t, time.Now())

	rows, err := e.commissionSvc.cashbackBonus(e.db, e.confirmedOrder(t, buyer, 1000, 100, false), buyer, period.ID)
	require.NoError(t, err)
	assert.Empty(t, rows) // unranked buyers get no cashback

	e.setRank(t, buyer, "VISIONARIO", period.ID)
	rows, err = e.commissionSvc.cashbackBonus(e.db, e.confirmedOrder(t, buyer, 1000, 100, false), buyer, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, buyer.ID, rows[0].MemberID)
	assert.Equal(t, "10", rows[0].Amount.String()) // 1% of 1000
}

func TestLoyaltyBonus_EveryFifthOrder(t *testing.T) {
	e := newTestEnv(t)
	buyer := e.addMember(t, "buyer", "USD", nil)
	period := e.ensurePeriod(t, time.Now())
	order := e.confirmedOrder(t, buyer, 1000, 100, false)

	buyer.ConfirmedOrders = 3
	rows, err := e.commissionSvc.loyaltyBonus(e.db, order, buyer, period.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	buyer.ConfirmedOrders = 5
	rows, err = e.commissionSvc.loyaltyBonus(e.db, order, buyer, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.BonusLoyalty, rows[0].BonusType)
	assert.Equal(t, "10", rows[0].Amount.String())
}

func TestOnRankAchieved_OneTimePerRank(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alice", "USD", nil)
	period := e.ensurePeriod(t, time.Now())
	change := &RankChange{From: "", To: "EMPRENDEDOR"}

	c, err := e.commissionSvc.OnRankAchieved(e.db, m, change, period.ID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, domain.BonusRankAchievement, c.BonusType)
	assert.Equal(t, "25", c.Amount.String())
	require.NotNil(t, c.RankCode)
	assert.Equal(t, "EMPRENDEDOR", *c.RankCode)

	again, err := e.commissionSvc.OnRankAchieved(e.db, m, change, period.ID)
	require.NoError(t, err)
	assert.Nil(t, again)

	list, err := e.commissionRepo.ListByMemberPeriod(m.ID, period.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOnRankAchieved_MemberCurrencyAmountIsDirect(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alicia", "MXN", nil)
	period := e.ensurePeriod(t, time.Now())

	c, err := e.commissionSvc.OnRankAchieved(e.db, m, &RankChange{To: "EMPRENDEDOR"}, period.ID)
	require.NoError(t, err)
	require.NotNil(t, c)
	// The plan lists the MXN amount explicitly, no conversion involved.
	assert.Equal(t, "450", c.Amount.String())
	assert.Equal(t, "MXN", c.Currency)
	assert.True(t, c.ExchangeRate.Equal(decimal.NewFromInt(1)))
}

func TestOnRankAchieved_EntryRankWindowForfeits(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alice", "USD", nil)
	period := e.ensurePeriod(t, time.Now())

	e.commissionSvc.now = func() time.Time { return time.Now().AddDate(0, 0, 40) }

	c, err := e.commissionSvc.OnRankAchieved(e.db, m, &RankChange{To: "EMPRENDEDOR"}, period.ID)
	require.NoError(t, err)
	assert.Nil(t, c)

	// Higher ranks are not window-bound.
	c, err = e.commissionSvc.OnRankAchieved(e.db, m, &RankChange{From: "EMPRENDEDOR", To: "CONSTRUCTOR"}, period.ID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "50", c.Amount.String())
}

func TestGrantPeriodBonuses_CarAndTravelOncePerPeriod(t *testing.T) {
	e := newTestEnv(t)
	amb := e.addMember(t, "amb", "USD", nil)
	vis := e.addMember(t, "vis", "USD", nil)
	period := e.ensurePeriod(t, time.Now())
	e.setRank(t, amb, "EMBAJADOR", period.ID)
	e.setRank(t, vis, "VISIONARIO", period.ID)

	rows, err := e.commissionSvc.GrantPeriodBonuses(e.db, period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	grouped := byBonus(rows)
	require.Len(t, grouped[domain.BonusCar], 1)
	assert.Equal(t, amb.ID, grouped[domain.BonusCar][0].MemberID)
	assert.Equal(t, "300", grouped[domain.BonusCar][0].Amount.String())
	require.Len(t, grouped[domain.BonusTravel], 1)
	assert.Equal(t, "500", grouped[domain.BonusTravel][0].Amount.String())

	// Re-running the grant adds nothing.
	rows, err = e.commissionSvc.GrantPeriodBonuses(e.db, period.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	var count int64
	require.NoError(t, e.db.Model(&models.Commission{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
