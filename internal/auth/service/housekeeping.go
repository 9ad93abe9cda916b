package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/store"
)

// HousekeepingService periodically cleans up expired database records
// to prevent unbounded growth of otps and the session ledger.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// OTPTTL is how long a code stays usable; older codes are deleted.
	OTPTTL time.Duration
	Now    func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, otpTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if otpTTL <= 0 {
		otpTTL = domain.DefaultOTPTTL
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		OTPTTL:   otpTTL,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes codes past their TTL and ledger rows whose refresh token
// has expired. Each deletion is independent - failures in one won't stop the
// other. It returns the number of rows removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	now := s.Now()
	s.Logger.Debug("starting housekeeping cleanup")

	var total int64

	n, err := s.Store.OTPs().DeleteOTPsCreatedBefore(ctx, now.Add(-s.OTPTTL))
	if err != nil {
		s.Logger.Error("failed to delete expired otps", "error", err)
	} else {
		s.Logger.Debug("deleted expired otps", "count", n)
		total += n
	}

	n, err = s.Store.Sessions().DeleteSessionsExpiredBefore(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
	} else {
		s.Logger.Debug("deleted expired sessions", "count", n)
		total += n
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", total)
	return total
}
