package repository

import (
	"time"

	"redvital/internal/domain"
	"redvital/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) Create(tx *gorm.DB, c *models.Commission) error {
	return tx.Create(c).Error
}

func (r *CommissionRepository) GetByID(id uint) (*models.Commission, error) {
	var c models.Commission
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommissionRepository) ListByMemberPeriod(memberID, periodID uint) ([]models.Commission, error) {
	var list []models.Commission
	err := r.db.Where("member_id = ? AND period_id = ?", memberID, periodID).
		Order("created_at ASC").Find(&list).Error
	return list, err
}

// PendingIDsByPeriod returns the IDs of all PENDING commissions attributed to
// the period, for settlement at close.
func (r *CommissionRepository) PendingIDsByPeriod(db *gorm.DB, periodID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Commission{}).
		Where("period_id = ? AND status = ?", periodID, domain.CommissionStatusPending).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// UnilevelForOrder returns the unilevel rows already written for an order and
// restricted to the given recipients. The matching bonus reads these in the
// same transaction that wrote them.
func (r *CommissionRepository) UnilevelForOrder(tx *gorm.DB, orderID uint, memberIDs []uint) ([]models.Commission, error) {
	var list []models.Commission
	if len(memberIDs) == 0 {
		return list, nil
	}
	err := tx.Where("source_order_id = ? AND bonus_type = ? AND member_id IN ?",
		orderID, domain.BonusUnilevel, memberIDs).
		Find(&list).Error
	return list, err
}

// HasAchievement reports whether the member already earned the achievement
// bonus for a rank. The unique (member_id, rank_code) index backs this up
// race-safely; the check keeps the common path constraint-error free.
func (r *CommissionRepository) HasAchievement(tx *gorm.DB, memberID uint, rankCode string) (bool, error) {
	var n int64
	err := tx.Model(&models.Commission{}).
		Where("member_id = ? AND bonus_type = ? AND rank_code = ?",
			memberID, domain.BonusRankAchievement, rankCode).
		Count(&n).Error
	return n > 0, err
}

// ExistsForMemberPeriodType reports whether the member already has a row of
// the given bonus type in the period (car/travel once-per-period guard).
func (r *CommissionRepository) ExistsForMemberPeriodType(tx *gorm.DB, memberID, periodID uint, bonusType domain.BonusType) (bool, error) {
	var n int64
	err := tx.Model(&models.Commission{}).
		Where("member_id = ? AND period_id = ? AND bonus_type = ?", memberID, periodID, bonusType).
		Count(&n).Error
	return n > 0, err
}

// LockByID loads a commission under a row lock for settlement.
func (r *CommissionRepository) LockByID(tx *gorm.DB, id uint) (*models.Commission, error) {
	var c models.Commission
	if err := forUpdate(tx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkPaidCAS flips PENDING -> PAID; returns false when the row was not
// pending (already paid or cancelled).
func (r *CommissionRepository) MarkPaidCAS(tx *gorm.DB, id uint, at time.Time) (bool, error) {
	res := tx.Model(&models.Commission{}).
		Where("id = ? AND status = ?", id, domain.CommissionStatusPending).
		Updates(map[string]interface{}{
			"status":  domain.CommissionStatusPaid,
			"paid_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SumForMemberPeriod totals pending+paid amounts (recipient currency) for
// projected-earnings dashboards.
func (r *CommissionRepository) SumForMemberPeriod(memberID, periodID uint) (decimal.Decimal, error) {
	var out struct{ Total decimal.Decimal }
	err := r.db.Model(&models.Commission{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("member_id = ? AND period_id = ? AND status IN ?",
			memberID, periodID,
			[]string{domain.CommissionStatusPending, domain.CommissionStatusPaid}).
		Scan(&out).Error
	return out.Total, err
}
