package router

import (
	"redvital/config"
	"redvital/internal/auth"
	"redvital/internal/domain"
	"redvital/internal/handler"
	"redvital/internal/middleware"
	"redvital/internal/repository"
	"redvital/internal/service"
	"redvital/pkg/exchange"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and returns the engine
// together with the period service, which the scheduler also needs.
func Setup(cfg *config.Config, db *gorm.DB, plan *domain.Plan, converter exchange.Converter, locker service.Locker, log *logrus.Logger) (*gin.Engine, *service.PeriodService) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	memberRepo := repository.NewMemberRepository(db)
	genealogyRepo := repository.NewGenealogyRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	rankRepo := repository.NewRankRepository(db)
	walletRepo := repository.NewWalletRepository(db)

	issuer := auth.NewIssuer(&cfg.JWT)

	// Services
	authSvc := service.NewAuthService(issuer, db, memberRepo, walletRepo, genealogyRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, memberRepo, converter)
	rankSvc := service.NewRankService(plan, memberRepo, rankRepo)
	commissionSvc := service.NewCommissionService(plan, converter, genealogyRepo, memberRepo, commissionRepo, rankSvc, log)
	settlementSvc := service.NewSettlementService(db, commissionRepo, walletRepo, log)
	paymentSvc := service.NewPaymentService(db, orderRepo, memberRepo, walletRepo, genealogyRepo, periodRepo, rankSvc, commissionSvc, settlementSvc, log)
	periodSvc := service.NewPeriodService(db, plan, periodRepo, commissionRepo, memberRepo, commissionSvc, settlementSvc, locker, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	memberHandler := handler.NewMemberHandler(memberRepo, genealogyRepo)
	orderHandler := handler.NewOrderHandler(orderSvc, paymentSvc, productRepo)
	commissionHandler := handler.NewCommissionHandler(commissionRepo, rankRepo, periodRepo)
	walletHandler := handler.NewWalletHandler(db, walletRepo)
	adminHandler := handler.NewAdminHandler(periodSvc, periodRepo, plan)

	authMw := middleware.AuthRequired(issuer)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		api.GET("/products", authMw, orderHandler.ListProducts)
		api.POST("/orders", authMw, orderHandler.Checkout)
		api.GET("/orders/:id", authMw, orderHandler.GetOrder)
		api.POST("/orders/:id/pay", authMw, orderHandler.Pay)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", memberHandler.Profile)
			me.GET("/upline", memberHandler.Upline)
			me.GET("/downline", memberHandler.Downline)
			me.GET("/commissions", commissionHandler.ListMine)
			me.GET("/earnings", commissionHandler.ProjectedEarnings)
			me.GET("/rank-history", commissionHandler.RankHistory)
			me.GET("/wallet", walletHandler.Balance)
			me.GET("/wallet/transactions", walletHandler.Transactions)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("/periods/close", adminHandler.ClosePeriod)
			admin.GET("/periods", adminHandler.ListPeriods)
			admin.GET("/plan", adminHandler.Plan)
		}

		api.POST("/webhooks/payment", orderHandler.ConfirmWebhook)
		api.POST("/webhooks/topup", walletHandler.TopUpWebhook)
	}

	return r, periodSvc
}
