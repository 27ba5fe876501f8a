package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/id"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

const (
	linkStatePrefix = "oauth:state:"
	linkStateTTL    = 10 * time.Minute
)

// StateStore keeps short-lived single-use values.
type StateStore interface {
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration)
	Take(ctx context.Context, key string) (any, bool)
}

// AccountLinkService creates and removes provider credentials via the authorization code flow.
type AccountLinkService struct {
	oauth  AuthCodeExchanger
	creds  credential.Repository
	states StateStore
	ids    id.Generator
	now    func() time.Time
	logger *logging.Logger
}

func NewAccountLinkService(
	oauth AuthCodeExchanger,
	creds credential.Repository,
	states StateStore,
	ids id.Generator,
	logger *logging.Logger,
) *AccountLinkService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AccountLinkService{oauth: oauth, creds: creds, states: states, ids: ids, now: time.Now, logger: logger}
}

// StartLink returns the provider consent URL bound to a fresh state for userID.
func (s *AccountLinkService) StartLink(ctx context.Context, userID string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountLinkService.StartLink")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	state, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	s.states.SetWithTTL(ctx, linkStatePrefix+state, userID, linkStateTTL)
	return s.oauth.AuthCodeURL(state), nil
}

// CompleteLink exchanges the code and stores the credential for the user the state was issued to.
func (s *AccountLinkService) CompleteLink(ctx context.Context, state, code string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountLinkService.CompleteLink")
	defer span.End()

	state, code = strings.TrimSpace(state), strings.TrimSpace(code)
	if state == "" || code == "" {
		return "", fmt.Errorf("%w: state and code are required", ErrInvalidInput)
	}
	v, found := s.states.Take(ctx, linkStatePrefix+state)
	if !found {
		return "", fmt.Errorf("%w: oauth state is unknown or expired", ErrInvalidInput)
	}
	userID, _ := v.(string)
	if userID == "" {
		return "", fmt.Errorf("%w: oauth state is not bound to a user", ErrInvalidInput)
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: exchange authorization code: %w", ErrProvider, err)
	}
	now := s.now().UTC()
	cred := credential.Credential{
		UserID:       userID,
		Provider:     credential.ProviderYahoo,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiryOf(tok, now),
		UpdatedAt:    now,
	}
	if err := cred.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if err := s.creds.Upsert(ctx, cred); err != nil {
		return "", fmt.Errorf("store credential user=%s: %w", userID, err)
	}
	s.logger.InfoContext(ctx, "yahoo account linked", "user_id", userID)
	return userID, nil
}

func (s *AccountLinkService) Unlink(ctx context.Context, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountLinkService.Unlink")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := s.creds.Delete(ctx, userID, credential.ProviderYahoo); err != nil {
		return fmt.Errorf("delete credential user=%s: %w", userID, err)
	}
	return nil
}
