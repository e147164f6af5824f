// Package sweeper removes expired refresh and reset token rows in the
// background. Expiry already governs usability, so the purge is invisible to
// callers; it only keeps the tables bounded.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/metrics"
	"github.com/ErlanBelekov/auth-service/internal/repository"
	"github.com/robfig/cron/v3"
)

type Sweeper struct {
	refresh  repository.RefreshTokenRepository
	resets   repository.ResetTokenRepository
	schedule cron.Schedule
	logger   *slog.Logger
}

// New parses the cron expression (standard five-field syntax or a descriptor
// such as "@hourly") and returns a sweeper running on that schedule.
func New(refresh repository.RefreshTokenRepository, resets repository.ResetTokenRepository, cronExpr string, logger *slog.Logger) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		refresh:  refresh,
		resets:   resets,
		schedule: schedule,
		logger:   logger.With("component", "sweeper"),
	}, nil
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper started")

	for {
		next := s.schedule.Next(time.Now())
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper shut down")
			return
		case <-time.After(time.Until(next)):
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now()

	if n, err := s.refresh.DeleteExpired(ctx, now); err != nil {
		s.logger.Error("purge expired refresh tokens", "error", err)
	} else if n > 0 {
		metrics.TokensPurgedTotal.WithLabelValues("refresh").Add(float64(n))
		s.logger.Info("purged expired refresh tokens", "count", n)
	}

	if n, err := s.resets.DeleteExpired(ctx, now); err != nil {
		s.logger.Error("purge expired reset codes", "error", err)
	} else if n > 0 {
		metrics.TokensPurgedTotal.WithLabelValues("reset").Add(float64(n))
		s.logger.Info("purged expired reset codes", "count", n)
	}
}
