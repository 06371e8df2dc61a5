package repository

import (
	"redvital/internal/models"

	"gorm.io/gorm"
)

type RankRepository struct {
	db *gorm.DB
}

func NewRankRepository(db *gorm.DB) *RankRepository {
	return &RankRepository{db: db}
}

func (r *RankRepository) AppendHistory(tx *gorm.DB, h *models.RankHistory) error {
	return tx.Create(h).Error
}

// LatestAsOfPeriod returns the newest rank recorded for the member at or
// before the given period, or gorm.ErrRecordNotFound when the member has no
// rank yet.
func (r *RankRepository) LatestAsOfPeriod(db *gorm.DB, memberID, periodID uint) (*models.RankHistory, error) {
	var h models.RankHistory
	err := db.Where("member_id = ? AND period_id <= ?", memberID, periodID).
		Order("id DESC").First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *RankRepository) HistoryForMember(memberID uint) ([]models.RankHistory, error) {
	var list []models.RankHistory
	err := r.db.Where("member_id = ?", memberID).Order("achieved_at ASC").Find(&list).Error
	return list, err
}
