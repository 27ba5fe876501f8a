package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/user"
	qb "github.com/riskibarqy/fantasy-trade-market/internal/platform/querybuilder"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n notification.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	query, args, err := qb.InsertModel("notifications", notificationTableModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert notification query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	query, args, err := qb.Select("*").From("notifications").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list notifications query: %w", err)
	}
	var rows []notificationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return lo.Map(rows, func(row notificationTableModel, _ int) notification.Notification {
		return notification.Notification{
			ID:        row.ID,
			UserID:    row.UserID,
			Type:      notification.Type(row.Type),
			Title:     row.Title,
			Message:   row.Message,
			Link:      row.Link,
			Read:      row.Read,
			CreatedAt: row.CreatedAt,
		}
	}), nil
}

type NewsRepository struct {
	db *sqlx.DB
}

func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) UpsertMany(ctx context.Context, items []news.Item) error {
	items = lo.UniqBy(lo.Filter(items, func(item news.Item, _ int) bool { return item.Link != "" }),
		func(item news.Item) string { return item.Link })
	if len(items) == 0 {
		return nil
	}

	insert := qb.InsertInto("news_items").
		Columns("link", "game_code", "headline", "description", "image_url", "published_at")
	for _, item := range items {
		insert.Values(item.Link, item.GameCode, item.Headline, item.Description, item.ImageURL, item.PublishedAt)
	}
	query, args, err := insert.
		Suffix("ON CONFLICT (link) DO UPDATE SET " + qb.Excluded("game_code", "headline", "description", "image_url", "published_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert news query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert news: %w", err)
	}
	return nil
}

func (r *NewsRepository) ListByGame(ctx context.Context, gameCode string, limit int) ([]news.Item, error) {
	query, args, err := qb.Select("*").From("news_items").
		Where(qb.Eq("game_code", gameCode)).
		OrderBy("published_at DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list news query: %w", err)
	}
	var rows []newsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return lo.Map(rows, func(row newsTableModel, _ int) news.Item { return news.Item(row) }), nil
}

type UserDirectory struct {
	db *sqlx.DB
}

func NewUserDirectory(db *sqlx.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) Remember(ctx context.Context, p user.Principal) error {
	if p.UserID == "" || p.Email == "" {
		return nil
	}
	query, args, err := qb.InsertInto("user_directory").
		Columns("user_id", "email").
		Values(p.UserID, p.Email).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build remember user query: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remember user: %w", err)
	}
	return nil
}

func (d *UserDirectory) Emails(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	query, args, err := qb.Select("user_id", "email").From("user_directory").
		Where(qb.In("user_id", qb.Strings(userIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select emails query: %w", err)
	}
	var rows []struct {
		UserID string `db:"user_id"`
		Email  string `db:"email"`
	}
	if err := d.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select emails: %w", err)
	}
	for _, row := range rows {
		out[row.UserID] = row.Email
	}
	return out, nil
}
