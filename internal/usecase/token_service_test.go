package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/memory"
	usecasemock "github.com/riskibarqy/fantasy-trade-market/internal/mocks/usecase"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

func seedCredential(t *testing.T, repo *memory.CredentialRepository, access string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), credential.Credential{
		UserID:       "u1",
		Provider:     credential.ProviderYahoo,
		AccessToken:  access,
		RefreshToken: "r1",
		ExpiresAt:    expiresAt,
	}))
}

func TestTokenService_ReturnsUnexpiredTokenWithoutRefresh(t *testing.T) {
	t.Parallel()

	repo := memory.NewCredentialRepository()
	seedCredential(t, repo, "a1", time.Now().Add(time.Hour))
	refresher := usecasemock.NewTokenRefresher(t)

	svc := usecase.NewTokenService(repo, refresher, time.Minute, logging.NewNop())
	got, err := svc.GetValidToken(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "a1", got)
}

func TestTokenService_RefreshesWithinSkewAndPersists(t *testing.T) {
	t.Parallel()

	repo := memory.NewCredentialRepository()
	seedCredential(t, repo, "a1", time.Now().Add(30*time.Second))
	refresher := usecasemock.NewTokenRefresher(t)
	refresher.On("Refresh", mock.Anything, "r1").
		Return(usecase.OAuthToken{AccessToken: "a2", RefreshToken: "r2", ExpiresIn: 3600}, nil).
		Once()

	svc := usecase.NewTokenService(repo, refresher, time.Minute, logging.NewNop())
	got, err := svc.GetValidToken(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "a2", got)

	stored, ok, err := repo.Get(context.Background(), "u1", credential.ProviderYahoo)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a2", stored.AccessToken)
	require.Equal(t, "r2", stored.RefreshToken)
	require.WithinDuration(t, time.Now().Add(time.Hour), stored.ExpiresAt, 5*time.Second)
}

func TestTokenService_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	t.Parallel()

	repo := memory.NewCredentialRepository()
	seedCredential(t, repo, "a1", time.Now().Add(-time.Minute))
	refresher := usecasemock.NewTokenRefresher(t)
	refresher.On("Refresh", mock.Anything, "r1").Return(usecase.OAuthToken{AccessToken: "a2"}, nil).Once()

	svc := usecase.NewTokenService(repo, refresher, 0, logging.NewNop())
	_, err := svc.GetValidToken(context.Background(), "u1")
	require.NoError(t, err)

	stored, _, _ := repo.Get(context.Background(), "u1", credential.ProviderYahoo)
	require.Equal(t, "r1", stored.RefreshToken)
	require.True(t, stored.ExpiresAt.After(time.Now().Add(50*time.Minute)), "missing expires_in falls back to the default lifetime")
}

func TestTokenService_NotLinked(t *testing.T) {
	t.Parallel()

	svc := usecase.NewTokenService(memory.NewCredentialRepository(), usecasemock.NewTokenRefresher(t), time.Minute, logging.NewNop())
	_, err := svc.GetValidToken(context.Background(), "ghost")
	require.ErrorIs(t, err, usecase.ErrNotLinked)
	require.True(t, usecase.IsAuthError(err))
}

func TestTokenService_RefreshRejected(t *testing.T) {
	t.Parallel()

	repo := memory.NewCredentialRepository()
	seedCredential(t, repo, "a1", time.Now().Add(-time.Minute))
	refresher := usecasemock.NewTokenRefresher(t)
	refresher.On("Refresh", mock.Anything, "r1").Return(usecase.OAuthToken{}, errors.New("invalid_grant")).Once()

	svc := usecase.NewTokenService(repo, refresher, time.Minute, logging.NewNop())
	_, err := svc.GetValidToken(context.Background(), "u1")
	require.ErrorIs(t, err, usecase.ErrRefreshFailed)
	require.True(t, usecase.IsAuthError(err))

	stored, _, _ := repo.Get(context.Background(), "u1", credential.ProviderYahoo)
	require.Equal(t, "a1", stored.AccessToken, "a failed refresh must not touch the stored credential")
}

func TestTokenService_ConcurrentRefreshRunsOnce(t *testing.T) {
	t.Parallel()

	repo := memory.NewCredentialRepository()
	seedCredential(t, repo, "a1", time.Now().Add(-time.Minute))
	refresher := usecasemock.NewTokenRefresher(t)
	refresher.On("Refresh", mock.Anything, "r1").
		After(20*time.Millisecond).
		Return(usecase.OAuthToken{AccessToken: "a2", ExpiresIn: 3600}, nil).
		Once()

	svc := usecase.NewTokenService(repo, refresher, time.Minute, logging.NewNop())

	const callers = 8
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = svc.GetValidToken(context.Background(), "u1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "a2", tokens[i])
	}
	refresher.AssertNumberOfCalls(t, "Refresh", 1)
}

func TestTokenService_ForceRefreshReplacesRejectedToken(t *testing.T) {
	t.Parallel()

	repo := memory.NewCredentialRepository()
	seedCredential(t, repo, "a1", time.Now().Add(time.Hour))
	refresher := usecasemock.NewTokenRefresher(t)
	refresher.On("Refresh", mock.Anything, "r1").Return(usecase.OAuthToken{AccessToken: "a2", ExpiresIn: 3600}, nil).Once()

	svc := usecase.NewTokenService(repo, refresher, time.Minute, logging.NewNop())
	got, err := svc.ForceRefresh(context.Background(), "u1", "a1")
	require.NoError(t, err)
	require.Equal(t, "a2", got)

	// A second caller holding the same stale token reuses the winner's token.
	got, err = svc.ForceRefresh(context.Background(), "u1", "a1")
	require.NoError(t, err)
	require.Equal(t, "a2", got)
}

type scriptedTokens struct {
	token     string
	refreshed string
	forced    int
	forceErr  error
}

func (s *scriptedTokens) GetValidToken(context.Context, string) (string, error) {
	return s.token, nil
}

func (s *scriptedTokens) ForceRefresh(_ context.Context, _, stale string) (string, error) {
	s.forced++
	if s.forceErr != nil {
		return "", s.forceErr
	}
	if stale != s.token {
		return "", fmt.Errorf("unexpected stale token %q", stale)
	}
	return s.refreshed, nil
}

func TestWithTokenRefresh_RetriesOnceAfterExpiry(t *testing.T) {
	t.Parallel()

	tokens := &scriptedTokens{token: "old", refreshed: "new"}
	var seen []string
	out, err := usecase.WithTokenRefresh(context.Background(), tokens, "u1", func(_ context.Context, tok string) (int, error) {
		seen = append(seen, tok)
		if tok == "old" {
			return 0, fmt.Errorf("%w: status 401", usecase.ErrTokenExpired)
		}
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, out)
	require.Equal(t, []string{"old", "new"}, seen)
	require.Equal(t, 1, tokens.forced)
}

func TestWithTokenRefresh_SecondExpiryIsFinal(t *testing.T) {
	t.Parallel()

	tokens := &scriptedTokens{token: "old", refreshed: "new"}
	calls := 0
	_, err := usecase.WithTokenRefresh(context.Background(), tokens, "u1", func(context.Context, string) (int, error) {
		calls++
		return 0, fmt.Errorf("%w: status 401", usecase.ErrTokenExpired)
	})
	require.ErrorIs(t, err, usecase.ErrTokenExpired)
	require.Equal(t, 2, calls)
	require.Equal(t, 1, tokens.forced)
}

func TestWithTokenRefresh_OtherErrorsDoNotRefresh(t *testing.T) {
	t.Parallel()

	tokens := &scriptedTokens{token: "old"}
	_, err := usecase.WithTokenRefresh(context.Background(), tokens, "u1", func(context.Context, string) (int, error) {
		return 0, fmt.Errorf("%w: status 503", usecase.ErrProvider)
	})
	require.ErrorIs(t, err, usecase.ErrProvider)
	require.Zero(t, tokens.forced)
}

func TestWithTokenRefresh_RefreshFailureSurfaces(t *testing.T) {
	t.Parallel()

	tokens := &scriptedTokens{token: "old", forceErr: fmt.Errorf("%w: revoked", usecase.ErrRefreshFailed)}
	calls := 0
	_, err := usecase.WithTokenRefresh(context.Background(), tokens, "u1", func(context.Context, string) (int, error) {
		calls++
		return 0, fmt.Errorf("%w: status 401", usecase.ErrTokenExpired)
	})
	require.ErrorIs(t, err, usecase.ErrRefreshFailed)
	require.Equal(t, 1, calls)
}
