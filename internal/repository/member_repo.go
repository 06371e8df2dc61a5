package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"redvital/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// generateSponsorCode returns an 8-character uppercase hex code.
func generateSponsorCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// Create persists a member, assigning a unique sponsor code.
func (r *MemberRepository) Create(tx *gorm.DB, m *models.Member) error {
	for i := 0; i < 10; i++ {
		code, err := generateSponsorCode()
		if err != nil {
			return err
		}
		m.SponsorCode = code
		if err := tx.Create(m).Error; err == nil {
			return nil
		} else if !strings.Contains(err.Error(), "sponsor_code") {
			return err
		}
		// Collision: retry with a new code
	}
	return fmt.Errorf("failed to generate a unique sponsor code after retries")
}

func (r *MemberRepository) GetByID(id uint) (*models.Member, error) {
	var m models.Member
	if err := r.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) GetByIDs(ids []uint) ([]models.Member, error) {
	var members []models.Member
	if len(ids) == 0 {
		return members, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&members).Error
	return members, err
}

func (r *MemberRepository) GetByEmail(email string) (*models.Member, error) {
	var m models.Member
	if err := r.db.Where("email = ?", email).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) GetBySponsorCode(code string) (*models.Member, error) {
	var m models.Member
	if err := r.db.Where("sponsor_code = ?", code).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// LockByID loads a member under a row lock for accumulator updates.
func (r *MemberRepository) LockByID(tx *gorm.DB, id uint) (*models.Member, error) {
	var m models.Member
	if err := forUpdate(tx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// AddPersonalVolume adds pv to the member's personal AND group volume in one
// statement; a member's group volume always includes their own production.
func (r *MemberRepository) AddPersonalVolume(tx *gorm.DB, memberID uint, pv decimal.Decimal) error {
	return tx.Model(&models.Member{}).Where("id = ?", memberID).
		Updates(map[string]interface{}{
			"personal_volume":  gorm.Expr("personal_volume + ?", pv),
			"group_volume":     gorm.Expr("group_volume + ?", pv),
			"confirmed_orders": gorm.Expr("confirmed_orders + 1"),
		}).Error
}

// AddGroupVolume adds pv to the group volume of every listed ancestor.
func (r *MemberRepository) AddGroupVolume(tx *gorm.DB, memberIDs []uint, pv decimal.Decimal) error {
	if len(memberIDs) == 0 {
		return nil
	}
	return tx.Model(&models.Member{}).Where("id IN ?", memberIDs).
		Update("group_volume", gorm.Expr("group_volume + ?", pv)).Error
}

// ResetAccumulators zeroes per-period volumes for every member, active or not.
func (r *MemberRepository) ResetAccumulators(tx *gorm.DB) error {
	return tx.Model(&models.Member{}).Where("1 = 1").
		Updates(map[string]interface{}{
			"personal_volume": decimal.Zero,
			"group_volume":    decimal.Zero,
		}).Error
}

// ListByRankCodes returns members currently holding one of the given ranks.
func (r *MemberRepository) ListByRankCodes(db *gorm.DB, codes []string) ([]models.Member, error) {
	var members []models.Member
	if len(codes) == 0 {
		return members, nil
	}
	err := db.Where("rank_code IN ?", codes).Order("id ASC").Find(&members).Error
	return members, err
}

func (r *MemberRepository) UpdateRankCode(tx *gorm.DB, memberID uint, rankCode string) error {
	return tx.Model(&models.Member{}).Where("id = ?", memberID).
		Update("rank_code", rankCode).Error
}
