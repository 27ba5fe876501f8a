package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/user"
)

type UserDirectory struct {
	mu     sync.RWMutex
	emails map[string]string
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{emails: make(map[string]string)}
}

func (d *UserDirectory) Remember(_ context.Context, p user.Principal) error {
	email := strings.TrimSpace(p.Email)
	if p.UserID == "" || email == "" {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.emails[p.UserID] = email
	return nil
}

func (d *UserDirectory) Emails(_ context.Context, userIDs []string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if email, ok := d.emails[id]; ok {
			out[id] = email
		}
	}
	return out, nil
}
