package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redvital/config"
	"redvital/internal/database"
	"redvital/internal/domain"
	"redvital/internal/router"
	"redvital/internal/scheduler"
	"redvital/internal/service"
	"redvital/pkg/exchange"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// defaultRates is the bootstrap exchange table, units per USD. A production
// deployment replaces this with a feed-backed Converter.
func defaultRates() map[string][]exchange.DatedRate {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return map[string][]exchange.DatedRate{
		"MXN": {{Date: epoch, Rate: decimal.NewFromFloat(18.50)}},
		"COP": {{Date: epoch, Rate: decimal.NewFromInt(4100)}},
		"EUR": {{Date: epoch, Rate: decimal.NewFromFloat(0.92)}},
		"PEN": {{Date: epoch, Rate: decimal.NewFromFloat(3.75)}},
	}
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	plan := domain.DefaultPlan()
	if err := database.SeedRanks(db, plan); err != nil {
		log.Fatalf("seed ranks: %v", err)
	}
	if err := database.SeedProducts(db); err != nil {
		log.Fatalf("seed products: %v", err)
	}

	converter := exchange.NewTableConverter(defaultRates())

	var locker service.Locker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = scheduler.NewRedisLocker(rdb, log)
		log.Info("distributed period-close lock enabled")
	}

	engine, periodSvc := router.Setup(cfg, db, plan, converter, locker, log)

	if err := periodSvc.EnsureCurrentPeriod(); err != nil {
		log.Fatalf("ensure period: %v", err)
	}

	sched := scheduler.New(periodSvc, log)
	if err := sched.Start(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}
	log.Info("server stopped")
}
