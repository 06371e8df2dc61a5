package repository

import (
	"fmt"
	"path/filepath"
	"testing"

	"redvital/internal/database"
	"redvital/internal/domain"
	"redvital/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// createMember inserts a member plus their genealogy edges, the same way
// registration does.
func createMember(t *testing.T, db *gorm.DB, name string, sponsorID *uint) *models.Member {
	t.Helper()
	m := &models.Member{
		Email:    fmt.Sprintf("%s@test.local", name),
		Name:     name,
		Role:     domain.RoleMember,
		Country:  "MX",
		Currency: "MXN",
	}
	m.SponsorID = sponsorID
	require.NoError(t, NewMemberRepository(db).Create(db, m))
	require.NoError(t, NewGenealogyRepository(db).AddMember(db, m.ID, sponsorID))
	return m
}
