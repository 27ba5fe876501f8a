package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

type batchSyncer interface {
	SyncAllLinkedUsers(ctx context.Context) (usecase.BatchSyncResult, error)
}

// newScheduler registers the all-users sync on spec. Overlapping runs are
// skipped. An empty spec returns nil.
func newScheduler(spec string, syncer batchSyncer, logger *logging.Logger) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}

	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), scheduledSyncLimit)
		defer cancel()

		result, err := syncer.SyncAllLinkedUsers(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "scheduled sync failed", "error", err)
			return
		}
		logger.InfoContext(ctx, "scheduled sync finished",
			"user_count", result.UserCount,
			"success_count", result.SuccessCount,
			"failed_count", result.FailedCount,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("register scheduled sync %q: %w", spec, err)
	}
	logger.Info("scheduled sync registered", "cron", spec)
	return c, nil
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
