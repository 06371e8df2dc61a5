package repository

import (
	"fmt"
	"time"

	"redvital/internal/models"

	"gorm.io/gorm"
)

type PeriodRepository struct {
	db *gorm.DB
}

func NewPeriodRepository(db *gorm.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// PeriodCode formats the canonical code for the month containing t.
func PeriodCode(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// monthWindow returns [first instant of month, first instant of next month).
func monthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// EnsureForMonth returns the period covering t, creating it if absent.
func (r *PeriodRepository) EnsureForMonth(tx *gorm.DB, t time.Time) (*models.Period, error) {
	start, end := monthWindow(t)
	p := models.Period{Code: PeriodCode(t), StartsAt: start, EndsAt: end}
	err := tx.Where("code = ?", p.Code).FirstOrCreate(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PeriodRepository) GetByID(id uint) (*models.Period, error) {
	var p models.Period
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// OldestClosable returns the oldest unclosed period whose window already
// ended at now, or gorm.ErrRecordNotFound if there is nothing to close.
func (r *PeriodRepository) OldestClosable(now time.Time) (*models.Period, error) {
	var p models.Period
	err := r.db.Where("closed_at IS NULL AND ends_at <= ?", now).
		Order("starts_at ASC").First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CloseCAS stamps closed_at iff the period is still open; returns false when
// another closer won the race.
func (r *PeriodRepository) CloseCAS(tx *gorm.DB, id uint, at time.Time) (bool, error) {
	res := tx.Model(&models.Period{}).
		Where("id = ? AND closed_at IS NULL", id).
		Update("closed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PeriodRepository) List(limit, offset int) ([]models.Period, error) {
	var list []models.Period
	err := r.db.Order("starts_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
