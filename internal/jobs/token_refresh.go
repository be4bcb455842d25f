// File: internal/jobs/token_refresh.go
package jobs

import (
	"context"
	"errors"
	"time"

	"authportal/internal/common"
	"authportal/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout bounds one refresh run.
const runTimeout = 30 * time.Second

// CredentialRefresher renews the session credential when it is close to expiry.
type CredentialRefresher interface {
	RefreshCredential(ctx context.Context, leeway time.Duration) (bool, error)
}

// TokenRefreshJob keeps the persisted ID token fresh while the host runs.
type TokenRefreshJob struct {
	refresher     CredentialRefresher
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

func NewTokenRefreshJob(refresher CredentialRefresher, logger *zap.Logger, cfg *config.Config) *TokenRefreshJob {
	cl := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))

	return &TokenRefreshJob{
		refresher:     refresher,
		logger:        logger.Named("TokenRefreshJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the job. An empty schedule disables it.
func (j *TokenRefreshJob) SetupAndStart() error {
	jobSpec := j.cfg.TokenRefreshSchedule
	if jobSpec == "" {
		j.logger.Warn("Token refresh schedule not defined (TOKEN_REFRESH_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.RunOnce)
	if err != nil {
		j.logger.Error("Failed to schedule token refresh job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Token refresh job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// RunOnce refreshes the credential if it expires within the configured leeway.
func (j *TokenRefreshJob) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	refreshed, err := j.refresher.RefreshCredential(ctx, j.cfg.TokenRefreshLeeway)
	switch {
	case errors.Is(err, common.ErrNotSignedIn):
		j.logger.Debug("No session to refresh")
	case err != nil:
		j.logger.Error("Token refresh run failed", zap.Error(err))
	case refreshed:
		j.logger.Info("Session credential refreshed")
	default:
		j.logger.Debug("Session credential still fresh")
	}
}

// Stop stops the scheduler and waits for a running refresh.
func (j *TokenRefreshJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping token refresh job scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Token refresh job scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Token refresh job scheduler stop timed out.")
	}
}
