package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/repositories/repomanager"
	"github.com/robfig/cron/v3"
)

// CleanupService reclaims rows that can no longer be used: redeemed or
// expired verification codes and expired sessions. Expiry is enforced on
// read regardless, so a missed sweep is harmless.
type CleanupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewCleanupService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *CleanupService {
	return &CleanupService{db: db, repomanager: m, logger: l, now: time.Now}
}

// Sweep runs one cleanup pass.
func (s *CleanupService) Sweep(ctx context.Context) error {
	now := s.now()

	codes, err := s.repomanager.VerificationCodes(s.db).DeleteStale(ctx, now)
	if err != nil {
		return err
	}
	sessions, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, now)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "cleanup sweep done", "codes_deleted", codes, "sessions_deleted", sessions)
	return nil
}

// Schedule registers Sweep on a cron scheduler. The caller starts and stops
// the scheduler.
func (s *CleanupService) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error(ctx, "cleanup sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
