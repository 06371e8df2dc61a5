package scheduler

import (
	"context"
	"errors"
	"time"

	"redvital/internal/service"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RedisLocker serializes period close across instances via redislock. When
// the lock is held elsewhere the run is skipped; the holder does the work.
type RedisLocker struct {
	client *redislock.Client
	log    *logrus.Logger
}

func NewRedisLocker(rdb *redis.Client, log *logrus.Logger) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), log: log}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	lock, err := l.client.Obtain(ctx, key, 5*time.Minute, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		l.log.WithField("key", key).Info("lock held elsewhere, skipping run")
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release(ctx) }()
	return fn()
}

// Scheduler triggers period close on the first of every month. The close
// itself is idempotent, so an extra trigger is harmless.
type Scheduler struct {
	cron      *cron.Cron
	periodSvc *service.PeriodService
	log       *logrus.Logger
}

func New(periodSvc *service.PeriodService, log *logrus.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), periodSvc: periodSvc, log: log}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("10 0 1 * *", func() {
		if err := s.periodSvc.CloseCurrentPeriod(context.Background()); err != nil {
			s.log.WithError(err).Error("monthly period close failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
