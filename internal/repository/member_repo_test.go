package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_AssignsSponsorCode(t *testing.T) {
	db := newTestDB(t)
	m := createMember(t, db, "alice", nil)
	assert.Len(t, m.SponsorCode, 8)

	repo := NewMemberRepository(db)
	found, err := repo.GetBySponsorCode(m.SponsorCode)
	require.NoError(t, err)
	assert.Equal(t, m.ID, found.ID)
}

func TestAddPersonalVolume_BumpsPersonalGroupAndOrderCount(t *testing.T) {
	db := newTestDB(t)
	m := createMember(t, db, "alice", nil)
	repo := NewMemberRepository(db)

	require.NoError(t, repo.AddPersonalVolume(db, m.ID, decimal.NewFromInt(120)))
	require.NoError(t, repo.AddPersonalVolume(db, m.ID, decimal.NewFromInt(30)))

	got, err := repo.GetByID(m.ID)
	require.NoError(t, err)
	assert.True(t, got.PersonalVolume.Equal(decimal.NewFromInt(150)))
	assert.True(t, got.GroupVolume.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 2, got.ConfirmedOrders)
}

func TestAddGroupVolume_OnlyListedMembers(t *testing.T) {
	db := newTestDB(t)
	a := createMember(t, db, "a", nil)
	b := createMember(t, db, "b", &a.ID)
	repo := NewMemberRepository(db)

	require.NoError(t, repo.AddGroupVolume(db, []uint{a.ID}, decimal.NewFromInt(75)))

	gotA, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	assert.True(t, gotA.GroupVolume.Equal(decimal.NewFromInt(75)))
	assert.True(t, gotA.PersonalVolume.IsZero())

	gotB, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.True(t, gotB.GroupVolume.IsZero())
}

func TestResetAccumulators_ZeroesEveryone(t *testing.T) {
	db := newTestDB(t)
	a := createMember(t, db, "a", nil)
	b := createMember(t, db, "b", &a.ID)
	repo := NewMemberRepository(db)

	require.NoError(t, repo.AddPersonalVolume(db, a.ID, decimal.NewFromInt(100)))
	require.NoError(t, repo.AddPersonalVolume(db, b.ID, decimal.NewFromInt(200)))
	require.NoError(t, repo.AddGroupVolume(db, []uint{a.ID}, decimal.NewFromInt(200)))

	require.NoError(t, repo.ResetAccumulators(db))

	for _, id := range []uint{a.ID, b.ID} {
		got, err := repo.GetByID(id)
		require.NoError(t, err)
		assert.True(t, got.PersonalVolume.IsZero())
		assert.True(t, got.GroupVolume.IsZero())
	}

	// Lifetime order counts survive the reset.
	gotA, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotA.ConfirmedOrders)
}
