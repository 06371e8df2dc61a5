package models

// GenealogyEdge is one row of the sponsorship closure table: member
// DescendantID sits Depth levels below AncestorID. Depth 0 is the self-edge.
// Rows are written once at registration and never mutated; every query the
// commission engine needs ("all ancestors up to N", "all depth-N descendants")
// is a single indexed read over this relation.
type GenealogyEdge struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	AncestorID   uint `gorm:"not null;index:idx_genealogy_pair,unique;index:idx_genealogy_ancestor_depth" json:"ancestor_id"`
	DescendantID uint `gorm:"not null;index:idx_genealogy_pair,unique;index:idx_genealogy_descendant_depth" json:"descendant_id"`
	Depth        int  `gorm:"not null;index:idx_genealogy_ancestor_depth;index:idx_genealogy_descendant_depth" json:"depth"`
}

func (GenealogyEdge) TableName() string { return "genealogy_edges" }
