package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

const defaultTokenLifetime = time.Hour

// TokenSource hands out provider access tokens for a user.
type TokenSource interface {
	GetValidToken(ctx context.Context, userID string) (string, error)
	// ForceRefresh replaces a token the provider rejected. stale is the rejected token.
	ForceRefresh(ctx context.Context, userID, stale string) (string, error)
}

type TokenService struct {
	creds     credential.Repository
	refresher TokenRefresher
	provider  credential.Provider
	skew      time.Duration
	flight    singleflight.Group
	now       func() time.Time
	logger    *logging.Logger
}

func NewTokenService(
	creds credential.Repository,
	refresher TokenRefresher,
	skew time.Duration,
	logger *logging.Logger,
) *TokenService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TokenService{
		creds:     creds,
		refresher: refresher,
		provider:  credential.ProviderYahoo,
		skew:      max(skew, 0),
		now:       time.Now,
		logger:    logger,
	}
}

// GetValidToken returns the stored access token while it is unexpired and refreshes it otherwise.
func (s *TokenService) GetValidToken(ctx context.Context, userID string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TokenService.GetValidToken")
	defer span.End()

	cred, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}
	if cred.UsableAt(s.now(), s.skew) {
		return cred.AccessToken, nil
	}
	return s.refresh(ctx, userID, cred.AccessToken)
}

func (s *TokenService) ForceRefresh(ctx context.Context, userID, stale string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TokenService.ForceRefresh")
	defer span.End()

	return s.refresh(ctx, userID, stale)
}

// refresh runs at most one refresh per (user, provider) at a time. A caller
// that lost the race picks up the token written by the winner.
func (s *TokenService) refresh(ctx context.Context, userID, stale string) (string, error) {
	key := userID + "::" + string(s.provider)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		cred, err := s.load(ctx, userID)
		if err != nil {
			return "", err
		}
		if cred.AccessToken != stale && cred.UsableAt(s.now(), s.skew) {
			return cred.AccessToken, nil
		}

		tok, err := s.refresher.Refresh(ctx, cred.RefreshToken)
		if err != nil {
			s.logger.WarnContext(ctx, "provider token refresh rejected", "user_id", userID, "error", err)
			return "", fmt.Errorf("%w: user=%s: %w", ErrRefreshFailed, userID, err)
		}
		if strings.TrimSpace(tok.AccessToken) == "" {
			return "", fmt.Errorf("%w: user=%s: empty access token in refresh response", ErrRefreshFailed, userID)
		}

		now := s.now()
		cred.AccessToken = tok.AccessToken
		if tok.RefreshToken != "" {
			cred.RefreshToken = tok.RefreshToken
		}
		cred.ExpiresAt = expiryOf(tok, now)
		cred.UpdatedAt = now
		if err := s.creds.Upsert(ctx, cred); err != nil {
			return "", fmt.Errorf("persist refreshed credential user=%s: %w", userID, err)
		}

		s.logger.InfoContext(ctx, "provider token refreshed", "user_id", userID, "expires_at", cred.ExpiresAt)
		return cred.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *TokenService) load(ctx context.Context, userID string) (credential.Credential, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return credential.Credential{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	cred, ok, err := s.creds.Get(ctx, userID, s.provider)
	if err != nil {
		return credential.Credential{}, fmt.Errorf("get credential user=%s: %w", userID, err)
	}
	if !ok {
		return credential.Credential{}, fmt.Errorf("%w: user=%s provider=%s", ErrNotLinked, userID, s.provider)
	}
	return cred, nil
}

// expiryOf prefers expires_in relative to now, then the absolute expiry, then the provider default.
func expiryOf(tok OAuthToken, now time.Time) time.Time {
	switch {
	case tok.ExpiresIn > 0:
		return now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	case !tok.Expiry.IsZero():
		return tok.Expiry
	default:
		return now.Add(defaultTokenLifetime)
	}
}

// WithTokenRefresh runs call with a valid token. If the provider reports the
// token expired, it refreshes once and retries once; the retry's outcome is final.
func WithTokenRefresh[T any](
	ctx context.Context,
	tokens TokenSource,
	userID string,
	call func(ctx context.Context, accessToken string) (T, error),
) (T, error) {
	var zero T

	token, err := tokens.GetValidToken(ctx, userID)
	if err != nil {
		return zero, err
	}
	out, err := call(ctx, token)
	if err == nil || !errors.Is(err, ErrTokenExpired) {
		return out, err
	}

	token, err = tokens.ForceRefresh(ctx, userID, token)
	if err != nil {
		return zero, err
	}
	return call(ctx, token)
}
