package repository

import (
	"redvital/internal/models"

	"gorm.io/gorm"
)

// GenealogyRepository owns the sponsorship closure table. Writes happen once
// per member at registration; every read is a single indexed query, never a
// recursive walk.
type GenealogyRepository struct {
	db *gorm.DB
}

func NewGenealogyRepository(db *gorm.DB) *GenealogyRepository {
	return &GenealogyRepository{db: db}
}

// AddMember inserts the self-edge for newID and, when a sponsor is present,
// copies every edge ending at the sponsor with depth+1. After this the new
// member's upline is the sponsor's entire upline plus the sponsor. Must run
// inside the same transaction that creates the member row.
func (r *GenealogyRepository) AddMember(tx *gorm.DB, newID uint, sponsorID *uint) error {
	self := models.GenealogyEdge{AncestorID: newID, DescendantID: newID, Depth: 0}
	if err := tx.Create(&self).Error; err != nil {
		return err
	}
	if sponsorID == nil {
		return nil
	}
	return tx.Exec(
		`INSERT INTO genealogy_edges (ancestor_id, descendant_id, depth)
		 SELECT ancestor_id, ?, depth + 1 FROM genealogy_edges WHERE descendant_id = ?`,
		newID, *sponsorID,
	).Error
}

// GetUpline returns the member's ancestors ordered nearest-first (depth asc).
// maxDepth <= 0 means unbounded.
func (r *GenealogyRepository) GetUpline(memberID uint, maxDepth int) ([]models.GenealogyEdge, error) {
	q := r.db.Where("descendant_id = ? AND depth > 0", memberID)
	if maxDepth > 0 {
		q = q.Where("depth <= ?", maxDepth)
	}
	var edges []models.GenealogyEdge
	err := q.Order("depth ASC").Find(&edges).Error
	return edges, err
}

// GetDownline returns the member's descendants ordered by depth asc.
// maxDepth <= 0 means unbounded.
func (r *GenealogyRepository) GetDownline(memberID uint, maxDepth int) ([]models.GenealogyEdge, error) {
	q := r.db.Where("ancestor_id = ? AND depth > 0", memberID)
	if maxDepth > 0 {
		q = q.Where("depth <= ?", maxDepth)
	}
	var edges []models.GenealogyEdge
	err := q.Order("depth ASC, descendant_id ASC").Find(&edges).Error
	return edges, err
}

// GetLevelMembers returns the IDs of descendants at exactly the given depth.
func (r *GenealogyRepository) GetLevelMembers(memberID uint, exactDepth int) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.GenealogyEdge{}).
		Where("ancestor_id = ? AND depth = ?", memberID, exactDepth).
		Order("descendant_id ASC").
		Pluck("descendant_id", &ids).Error
	return ids, err
}

func (r *GenealogyRepository) CountDescendants(memberID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.GenealogyEdge{}).
		Where("ancestor_id = ? AND depth > 0", memberID).
		Count(&n).Error
	return n, err
}

func (r *GenealogyRepository) IsAncestor(ancestorID, descendantID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.GenealogyEdge{}).
		Where("ancestor_id = ? AND descendant_id = ? AND depth > 0", ancestorID, descendantID).
		Count(&n).Error
	return n > 0, err
}

// AncestorIDs returns upline member IDs nearest-first, a convenience over
// GetUpline for volume rollups.
func (r *GenealogyRepository) AncestorIDs(memberID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.GenealogyEdge{}).
		Where("descendant_id = ? AND depth > 0", memberID).
		Order("depth ASC").
		Pluck("ancestor_id", &ids).Error
	return ids, err
}
