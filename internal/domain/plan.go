package domain

import "github.com/shopspring/decimal"

// RankSpec is one tier of the compensation plan. Positions are 1-based and
// strictly ascending with the qualification thresholds.
type RankSpec struct {
	Code       string
	Name       string
	Position   int
	RequiredPV decimal.Decimal // personal volume threshold
	RequiredGV decimal.Decimal // group volume threshold (includes own PV)

	// UnilevelPercents[i] applies to depth i+1. A rank earns unilevel
	// commissions only down to len(UnilevelPercents) levels.
	UnilevelPercents []decimal.Decimal
	// InfinitePercent, when non-zero, applies to every depth beyond the
	// explicit levels. Only the top tier carries it.
	InfinitePercent decimal.Decimal

	// MatchingPercents are the nominal match levels for ambassador tiers.
	// The engine pays matching on depth-1 production only, so only index 0
	// is ever applied; the deeper entries are kept for plan fidelity.
	MatchingPercents []decimal.Decimal

	// AchievementBonus is the one-time promotion bonus, keyed by currency.
	// Currencies not listed are converted from the BaseCurrency amount.
	AchievementBonus map[string]decimal.Decimal

	// Monthly grants recorded at period close for members holding the rank.
	CarBonus   decimal.Decimal
	TravelFund decimal.Decimal

	// CashbackPercent of order VN credited back to the buyer per order.
	CashbackPercent decimal.Decimal
}

// Ambassador reports whether the rank participates in the matching bonus.
func (r RankSpec) Ambassador() bool { return len(r.MatchingPercents) > 0 }

// Plan is the full compensation plan. It is loaded once at startup and never
// mutated; services receive it as a constructor parameter.
type Plan struct {
	Ranks []RankSpec // ascending by Position

	DirectPercent     decimal.Decimal   // of order VN, to the sponsor
	FastStartPercents []decimal.Decimal // of kit PV, upline depths 1..3

	// EntryRankWindowDays bounds the achievement bonus for the entry rank:
	// it is forfeited unless earned within this many days of registration.
	EntryRankWindowDays int

	LoyaltyOrderInterval int             // every Nth confirmed order
	LoyaltyBonus         decimal.Decimal // in BaseCurrency

	byCode map[string]RankSpec
}

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func amt(v int64) decimal.Decimal  { return decimal.NewFromInt(v) }
func pcts(ss ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		out[i] = pct(s)
	}
	return out
}

// DefaultPlan returns the production compensation plan.
func DefaultPlan() *Plan {
	p := &Plan{
		Ranks: []RankSpec{
			{
				Code: "EMPRENDEDOR", Name: "Emprendedor", Position: 1,
				RequiredPV: amt(50), RequiredGV: amt(200),
				UnilevelPercents: pcts("5"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(25), "MXN": amt(450), "COP": amt(100000)},
			},
			{
				Code: "CONSTRUCTOR", Name: "Constructor", Position: 2,
				RequiredPV: amt(100), RequiredGV: amt(500),
				UnilevelPercents: pcts("5", "8"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(50), "MXN": amt(900), "COP": amt(200000)},
			},
			{
				Code: "VISIONARIO", Name: "Visionario", Position: 3,
				RequiredPV: amt(100), RequiredGV: amt(1500),
				UnilevelPercents: pcts("5", "8", "10"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(100), "MXN": amt(1800), "COP": amt(400000)},
				CashbackPercent:  pct("1"),
			},
			{
				Code: "LIDER", Name: "Líder", Position: 4,
				RequiredPV: amt(150), RequiredGV: amt(4000),
				UnilevelPercents: pcts("5", "8", "10", "4"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(200), "MXN": amt(3600), "COP": amt(800000)},
				CashbackPercent:  pct("1"),
			},
			{
				Code: "DIRECTOR", Name: "Director", Position: 5,
				RequiredPV: amt(150), RequiredGV: amt(10000),
				UnilevelPercents: pcts("5", "8", "10", "4", "4"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(400), "MXN": amt(7200), "COP": amt(1600000)},
				CashbackPercent:  pct("1"),
			},
			{
				Code: "EMBAJADOR", Name: "Embajador", Position: 6,
				RequiredPV: amt(200), RequiredGV: amt(25000),
				UnilevelPercents: pcts("5", "8", "10", "4", "4", "3"),
				MatchingPercents: pcts("10"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(800), "MXN": amt(14400)},
				CarBonus:         amt(300), TravelFund: amt(500),
				CashbackPercent: pct("2"),
			},
			{
				Code: "EMBAJADOR_PLATA", Name: "Embajador Plata", Position: 7,
				RequiredPV: amt(200), RequiredGV: amt(60000),
				UnilevelPercents: pcts("5", "8", "10", "4", "4", "3", "3"),
				MatchingPercents: pcts("15", "5"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(1500)},
				CarBonus:         amt(500), TravelFund: amt(1000),
				CashbackPercent: pct("2"),
			},
			{
				Code: "EMBAJADOR_ORO", Name: "Embajador Oro", Position: 8,
				RequiredPV: amt(200), RequiredGV: amt(150000),
				UnilevelPercents: pcts("5", "8", "10", "4", "4", "3", "3", "2"),
				MatchingPercents: pcts("20", "10", "5"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(3000)},
				CarBonus:         amt(800), TravelFund: amt(2000),
				CashbackPercent: pct("2"),
			},
			{
				Code: "EMBAJADOR_DIAMANTE", Name: "Embajador Diamante", Position: 9,
				RequiredPV: amt(200), RequiredGV: amt(400000),
				UnilevelPercents: pcts("5", "8", "10", "4", "4", "3", "3", "2", "2"),
				InfinitePercent:  pct("1"),
				MatchingPercents: pcts("25", "10", "5", "5"),
				AchievementBonus: map[string]decimal.Decimal{"USD": amt(6000)},
				CarBonus:         amt(1200), TravelFund: amt(4000),
				CashbackPercent: pct("2"),
			},
		},
		DirectPercent:        pct("25"),
		FastStartPercents:    pcts("30", "10", "5"),
		EntryRankWindowDays:  30,
		LoyaltyOrderInterval: 5,
		LoyaltyBonus:         amt(10),
	}
	p.byCode = make(map[string]RankSpec, len(p.Ranks))
	for _, r := range p.Ranks {
		p.byCode[r.Code] = r
	}
	return p
}

// RankByCode returns the rank spec for a code; ok is false for unknown codes
// (including the empty code of an unranked member).
func (p *Plan) RankByCode(code string) (RankSpec, bool) {
	r, ok := p.byCode[code]
	return r, ok
}

// EntryRank is the lowest paid rank.
func (p *Plan) EntryRank() RankSpec { return p.Ranks[0] }

// HighestQualified returns the highest rank whose thresholds pv/gv meet,
// scanning ascending. ok is false when not even the entry rank qualifies.
func (p *Plan) HighestQualified(pv, gv decimal.Decimal) (RankSpec, bool) {
	var best RankSpec
	found := false
	for _, r := range p.Ranks {
		if pv.GreaterThanOrEqual(r.RequiredPV) && gv.GreaterThanOrEqual(r.RequiredGV) {
			best = r
			found = true
			continue
		}
		break
	}
	return best, found
}

// UnilevelPercentAt returns the percentage the rank earns at the given depth
// (1-based), falling back to the infinite tier beyond the explicit levels.
// ok is false when the rank earns nothing at that depth.
func (r RankSpec) UnilevelPercentAt(depth int) (decimal.Decimal, bool) {
	if depth <= 0 {
		return decimal.Zero, false
	}
	if depth <= len(r.UnilevelPercents) {
		return r.UnilevelPercents[depth-1], true
	}
	if !r.InfinitePercent.IsZero() {
		return r.InfinitePercent, true
	}
	return decimal.Zero, false
}
