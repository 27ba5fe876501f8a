package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

// UserSyncer runs one user's sync pass.
type UserSyncer interface {
	SyncUserLeagues(ctx context.Context, userID string) SyncResult
}

type BatchSyncResult struct {
	UserCount    int             `json:"user_count"`
	SuccessCount int             `json:"success_count"`
	FailedCount  int             `json:"failed_count"`
	WorkerCount  int             `json:"worker_count"`
	Users        []UserSyncEntry `json:"users"`
}

type UserSyncEntry struct {
	UserID     string `json:"user_id"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// ScheduledSyncService fans SyncUserLeagues out over every linked user.
type ScheduledSyncService struct {
	creds   credential.Repository
	syncer  UserSyncer
	workers int
	logger  *logging.Logger
}

func NewScheduledSyncService(creds credential.Repository, syncer UserSyncer, workers int, logger *logging.Logger) *ScheduledSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = 4
	}
	return &ScheduledSyncService{creds: creds, syncer: syncer, workers: workers, logger: logger}
}

func (s *ScheduledSyncService) SyncAllLinkedUsers(ctx context.Context) (BatchSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduledSyncService.SyncAllLinkedUsers")
	defer span.End()

	userIDs, err := s.creds.ListUserIDs(ctx, credential.ProviderYahoo)
	if err != nil {
		return BatchSyncResult{}, fmt.Errorf("list linked users: %w", err)
	}
	result := BatchSyncResult{UserCount: len(userIDs), WorkerCount: min(s.workers, max(len(userIDs), 1))}
	if len(userIDs) == 0 {
		return result, nil
	}

	p, err := ants.NewPool(result.WorkerCount)
	if err != nil {
		return BatchSyncResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer p.Release()

	rows := make(chan UserSyncEntry, len(userIDs))
	var succeeded, failed atomic.Int32
	var wg sync.WaitGroup
	var submitErr error
	for _, userID := range userIDs {
		userID := userID
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			start := time.Now()
			res := s.syncer.SyncUserLeagues(ctx, userID)
			if res.Success {
				succeeded.Add(1)
			} else {
				failed.Add(1)
			}
			rows <- UserSyncEntry{
				UserID:     userID,
				Success:    res.Success,
				Message:    res.Message,
				DurationMs: time.Since(start).Milliseconds(),
			}
		}); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit user=%s to worker pool: %w", userID, err)
			break
		}
	}
	wg.Wait()
	close(rows)
	if submitErr != nil {
		return BatchSyncResult{}, submitErr
	}

	for row := range rows {
		result.Users = append(result.Users, row)
	}
	sort.SliceStable(result.Users, func(i, j int) bool { return result.Users[i].UserID < result.Users[j].UserID })
	result.SuccessCount = int(succeeded.Load())
	result.FailedCount = int(failed.Load())

	s.logger.InfoContext(ctx, "scheduled sync finished",
		"users", result.UserCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return result, nil
}
