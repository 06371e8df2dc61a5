package database

import (
	"redvital/config"
	"redvital/internal/domain"
	"redvital/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Member{},
		&models.GenealogyEdge{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&models.Commission{},
		&models.Period{},
		&models.Rank{},
		&models.RankHistory{},
		&models.Wallet{},
		&models.WalletTransaction{},
	)
}

// SeedRanks upserts the plan's rank tiers so reporting queries can join on
// them. The plan itself stays the source of truth for percentages.
func SeedRanks(db *gorm.DB, plan *domain.Plan) error {
	for _, r := range plan.Ranks {
		rank := models.Rank{
			Code:       r.Code,
			Name:       r.Name,
			Position:   r.Position,
			RequiredPV: r.RequiredPV,
			RequiredGV: r.RequiredGV,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "position", "required_pv", "required_gv", "updated_at"}),
		}).Create(&rank).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedProducts inserts a starter catalog when the table is empty.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	products := []models.Product{
		{SKU: "KIT-INICIO", Name: "Kit de Inicio", IsKit: true, Price: decimal.NewFromInt(199), PV: decimal.NewFromInt(200), VN: decimal.NewFromInt(160), Active: true},
		{SKU: "KIT-PRO", Name: "Kit Profesional", IsKit: true, Price: decimal.NewFromInt(499), PV: decimal.NewFromInt(500), VN: decimal.NewFromInt(420), Active: true},
		{SKU: "SUP-OMEGA", Name: "Omega Vital", Price: decimal.NewFromInt(45), PV: decimal.NewFromInt(40), VN: decimal.NewFromInt(35), Active: true},
		{SKU: "SUP-COLAGENO", Name: "Colageno Plus", Price: decimal.NewFromInt(38), PV: decimal.NewFromInt(35), VN: decimal.NewFromInt(30), Active: true},
		{SKU: "SUP-VITAMINA", Name: "Multivitaminico", Price: decimal.NewFromInt(29), PV: decimal.NewFromInt(25), VN: decimal.NewFromInt(22), Active: true},
	}
	return db.Create(&products).Error
}
