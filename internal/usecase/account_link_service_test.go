package usecase_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/memory"
	usecasemock "github.com/riskibarqy/fantasy-trade-market/internal/mocks/usecase"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/cache"
	idgen "github.com/riskibarqy/fantasy-trade-market/internal/platform/id"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

func newLinkService(t *testing.T) (*usecase.AccountLinkService, *usecasemock.AuthCodeExchanger, *memory.CredentialRepository) {
	t.Helper()
	oauth := usecasemock.NewAuthCodeExchanger(t)
	oauth.On("AuthCodeURL", mock.AnythingOfType("string")).
		Return(func(state string) string { return "https://login.example/authorize?state=" + state }).
		Maybe()
	repo := memory.NewCredentialRepository()
	svc := usecase.NewAccountLinkService(oauth, repo, cache.NewStore(16, time.Minute), idgen.NewUUIDGenerator(), logging.NewNop())
	return svc, oauth, repo
}

func stateOf(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestAccountLink_StartThenComplete(t *testing.T) {
	t.Parallel()

	svc, oauth, repo := newLinkService(t)
	oauth.On("Exchange", mock.Anything, "code-1").
		Return(usecase.OAuthToken{AccessToken: "a1", RefreshToken: "r1", ExpiresIn: 3600}, nil).
		Once()

	authURL, err := svc.StartLink(context.Background(), "u1")
	require.NoError(t, err)

	userID, err := svc.CompleteLink(context.Background(), stateOf(t, authURL), "code-1")
	require.NoError(t, err)
	require.Equal(t, "u1", userID)

	stored, ok, err := repo.Get(context.Background(), "u1", credential.ProviderYahoo)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a1", stored.AccessToken)
	require.Equal(t, "r1", stored.RefreshToken)
	require.True(t, stored.ExpiresAt.After(time.Now().Add(50*time.Minute)))
}

func TestAccountLink_StateIsSingleUse(t *testing.T) {
	t.Parallel()

	svc, oauth, _ := newLinkService(t)
	oauth.On("Exchange", mock.Anything, "code-1").
		Return(usecase.OAuthToken{AccessToken: "a1", RefreshToken: "r1"}, nil).
		Once()

	authURL, err := svc.StartLink(context.Background(), "u1")
	require.NoError(t, err)
	state := stateOf(t, authURL)

	_, err = svc.CompleteLink(context.Background(), state, "code-1")
	require.NoError(t, err)

	_, err = svc.CompleteLink(context.Background(), state, "code-1")
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestAccountLink_UnknownStateNeverReachesProvider(t *testing.T) {
	t.Parallel()

	svc, _, _ := newLinkService(t)
	_, err := svc.CompleteLink(context.Background(), "forged", "code-1")
	require.ErrorIs(t, err, usecase.ErrInvalidInput)

	_, err = svc.CompleteLink(context.Background(), "", "")
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestAccountLink_ExchangeFailure(t *testing.T) {
	t.Parallel()

	svc, oauth, repo := newLinkService(t)
	oauth.On("Exchange", mock.Anything, "bad").Return(usecase.OAuthToken{}, errors.New("invalid_grant")).Once()

	authURL, err := svc.StartLink(context.Background(), "u1")
	require.NoError(t, err)

	_, err = svc.CompleteLink(context.Background(), stateOf(t, authURL), "bad")
	require.ErrorIs(t, err, usecase.ErrProvider)

	_, ok, _ := repo.Get(context.Background(), "u1", credential.ProviderYahoo)
	require.False(t, ok)
}

func TestAccountLink_TokenWithoutRefreshTokenIsRejected(t *testing.T) {
	t.Parallel()

	svc, oauth, repo := newLinkService(t)
	oauth.On("Exchange", mock.Anything, "code-1").Return(usecase.OAuthToken{AccessToken: "a1"}, nil).Once()

	authURL, err := svc.StartLink(context.Background(), "u1")
	require.NoError(t, err)

	_, err = svc.CompleteLink(context.Background(), stateOf(t, authURL), "code-1")
	require.ErrorIs(t, err, usecase.ErrProvider)

	_, ok, _ := repo.Get(context.Background(), "u1", credential.ProviderYahoo)
	require.False(t, ok)
}

func TestAccountLink_Unlink(t *testing.T) {
	t.Parallel()

	svc, _, repo := newLinkService(t)
	seedCredential(t, repo, "a1", time.Now().Add(time.Hour))

	require.NoError(t, svc.Unlink(context.Background(), "u1"))
	_, ok, _ := repo.Get(context.Background(), "u1", credential.ProviderYahoo)
	require.False(t, ok)

	require.ErrorIs(t, svc.Unlink(context.Background(), " "), usecase.ErrInvalidInput)
}

func TestAccountLink_StartRequiresUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newLinkService(t)
	_, err := svc.StartLink(context.Background(), "")
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}
