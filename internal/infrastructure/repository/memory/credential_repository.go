package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
)

type CredentialRepository struct {
	mu    sync.RWMutex
	items map[string]credential.Credential
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{items: make(map[string]credential.Credential)}
}

func (r *CredentialRepository) Get(_ context.Context, userID string, provider credential.Provider) (credential.Credential, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[credentialKey(userID, provider)]
	return c, ok, nil
}

func (r *CredentialRepository) Upsert(_ context.Context, c credential.Credential) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[credentialKey(c.UserID, c.Provider)] = c
	return nil
}

func (r *CredentialRepository) Delete(_ context.Context, userID string, provider credential.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, credentialKey(userID, provider))
	return nil
}

func (r *CredentialRepository) ListUserIDs(_ context.Context, provider credential.Provider) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.items))
	for _, c := range r.items {
		if c.Provider == provider {
			out = append(out, c.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func credentialKey(userID string, provider credential.Provider) string {
	return userID + "::" + string(provider)
}
