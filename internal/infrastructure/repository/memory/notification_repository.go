package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
)

type NotificationRepository struct {
	mu    sync.RWMutex
	items []notification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, n notification.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, n)
	return nil
}

// ListByUser returns newest first; limit <= 0 means no limit.
func (r *NotificationRepository) ListByUser(_ context.Context, userID string, limit int) ([]notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []notification.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID != userID {
			continue
		}
		out = append(out, r.items[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type NewsRepository struct {
	mu    sync.RWMutex
	items map[string]news.Item
}

func NewNewsRepository() *NewsRepository {
	return &NewsRepository{items: make(map[string]news.Item)}
}

func (r *NewsRepository) UpsertMany(_ context.Context, items []news.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if item.Link == "" {
			continue
		}
		r.items[item.Link] = item
	}
	return nil
}

func (r *NewsRepository) ListByGame(_ context.Context, gameCode string, limit int) ([]news.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []news.Item
	for _, item := range r.items {
		if item.GameCode == gameCode {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
