package backup

import (
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler writes periodic snapshot files on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	db     *sqlx.DB
	dir    string
	logger *zap.Logger
}

// NewScheduler creates a scheduler; Start is a no-op until called.
func NewScheduler(db *sqlx.DB, dir string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), db: db, dir: dir, logger: logger}
}

// Start registers the snapshot job with a standard 5-field cron spec and
// starts the cron loop.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("backup scheduler started", zap.String("schedule", spec), zap.String("dir", s.dir))
	return nil
}

// Stop stops the cron loop; a running snapshot finishes.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("backup scheduler stopped")
}

func (s *Scheduler) run() {
	path, err := WriteFile(s.db, s.dir)
	if err != nil {
		s.logger.Error("scheduled backup failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled backup written", zap.String("path", path))
}
