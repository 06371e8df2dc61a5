package service

import (
	"testing"
	"time"

	"redvital/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAndPromote_EntryRank(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alice", "USD", nil)
	period := e.ensurePeriod(t, time.Now())

	m.PersonalVolume = decimal.NewFromInt(50)
	m.GroupVolume = decimal.NewFromInt(200)

	change, err := e.rankSvc.EvaluateAndPromote(e.db, m, period.ID)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, "", change.From)
	assert.Equal(t, "EMPRENDEDOR", change.To)
	assert.Equal(t, "EMPRENDEDOR", m.RankCode)

	stored, err := e.memberRepo.GetByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "EMPRENDEDOR", stored.RankCode)
}

func TestEvaluateAndPromote_BelowThresholdsIsNil(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alice", "USD", nil)
	period := e.ensurePeriod(t, time.Now())

	m.PersonalVolume = decimal.NewFromInt(49)
	m.GroupVolume = decimal.NewFromInt(10000)

	change, err := e.rankSvc.EvaluateAndPromote(e.db, m, period.ID)
	require.NoError(t, err)
	assert.Nil(t, change)
}

func TestEvaluateAndPromote_SkipsIntermediateRanks(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alice", "USD", nil)
	period := e.ensurePeriod(t, time.Now())

	// Qualifies Emprendedor, Constructor and Visionario in one evaluation;
	// only the highest is recorded.
	m.PersonalVolume = decimal.NewFromInt(100)
	m.GroupVolume = decimal.NewFromInt(1500)

	change, err := e.rankSvc.EvaluateAndPromote(e.db, m, period.ID)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, "VISIONARIO", change.To)

	history, err := e.rankRepo.HistoryForMember(m.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "VISIONARIO", history[0].RankCode)
}

func TestEvaluateAndPromote_SecondCallIsNoop(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alice", "USD", nil)
	period := e.ensurePeriod(t, time.Now())

	m.PersonalVolume = decimal.NewFromInt(50)
	m.GroupVolume = decimal.NewFromInt(200)

	change, err := e.rankSvc.EvaluateAndPromote(e.db, m, period.ID)
	require.NoError(t, err)
	require.NotNil(t, change)

	change, err = e.rankSvc.EvaluateAndPromote(e.db, m, period.ID)
	require.NoError(t, err)
	assert.Nil(t, change)

	history, err := e.rankRepo.HistoryForMember(m.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestEvaluateAndPromote_NeverDemotes(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alice", "USD", nil)
	period := e.ensurePeriod(t, time.Now())
	e.setRank(t, m, "VISIONARIO", period.ID)

	// Volumes now only satisfy the entry rank.
	m.PersonalVolume = decimal.NewFromInt(50)
	m.GroupVolume = decimal.NewFromInt(200)

	change, err := e.rankSvc.EvaluateAndPromote(e.db, m, period.ID)
	require.NoError(t, err)
	assert.Nil(t, change)
	assert.Equal(t, "VISIONARIO", m.RankCode)
}

func TestCurrentRank_AsOfPeriod(t *testing.T) {
	e := newTestEnv(t)
	m := e.addMember(t, "alice", "USD", nil)
	jan := e.ensurePeriod(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	feb := e.ensurePeriod(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))

	e.setRank(t, m, "CONSTRUCTOR", feb.ID)

	// Not ranked as of January.
	_, ok, err := e.rankSvc.CurrentRank(e.db, m.ID, jan.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	rank, ok, err := e.rankSvc.CurrentRank(e.db, m.ID, feb.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CONSTRUCTOR", rank.Code)
}

func TestHighestQualified_BreaksAtFirstGap(t *testing.T) {
	plan := domain.DefaultPlan()
	// Group volume alone cannot jump ranks past a failing personal threshold.
	rank, ok := plan.HighestQualified(decimal.NewFromInt(100), decimal.NewFromInt(999999))
	require.True(t, ok)
	assert.Equal(t, "VISIONARIO", rank.Code) // LIDER needs 150 PV
}
