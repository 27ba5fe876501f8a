package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/id"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

// NotificationService is a fire-and-forget sink. Notify never fails the caller.
type NotificationService struct {
	repo   notification.Repository
	ids    id.Generator
	now    func() time.Time
	logger *logging.Logger
}

func NewNotificationService(repo notification.Repository, ids id.Generator, logger *logging.Logger) *NotificationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationService{repo: repo, ids: ids, now: time.Now, logger: logger}
}

func (s *NotificationService) Notify(ctx context.Context, userID string, typ notification.Type, title, message, link string) {
	if s == nil || strings.TrimSpace(userID) == "" {
		return
	}
	nid, err := s.ids.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "generate notification id failed", "user_id", userID, "error", err)
		return
	}
	n := notification.Notification{
		ID:        nid,
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "create notification failed", "user_id", userID, "type", typ, "error", err)
	}
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.List")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications user=%s: %w", userID, err)
	}
	return items, nil
}
