package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

const (
	defaultAuthURL  = "https://api.login.yahoo.com/oauth2/request_auth"
	defaultTokenURL = "https://api.login.yahoo.com/oauth2/get_token"
)

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	HTTPClient   *http.Client
}

// OAuth performs the authorization code and refresh grants. Client
// credentials travel in the Basic auth header.
type OAuth struct {
	cfg        *oauth2.Config
	httpClient *http.Client
}

func NewOAuth(cfg OAuthConfig) *OAuth {
	authURL := strings.TrimSpace(cfg.AuthURL)
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	return &OAuth{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: cfg.HTTPClient,
	}
}

func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

func (o *OAuth) Exchange(ctx context.Context, code string) (usecase.OAuthToken, error) {
	tok, err := o.cfg.Exchange(o.withClient(ctx), code)
	if err != nil {
		return usecase.OAuthToken{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tokenOf(tok), nil
}

// Refresh forces a refresh grant. The token source only refreshes a token it
// believes expired, so the stored refresh token is handed over already expired.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (usecase.OAuthToken, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return usecase.OAuthToken{}, fmt.Errorf("refresh token is empty")
	}
	stale := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Now().Add(-time.Minute)}
	tok, err := o.cfg.TokenSource(o.withClient(ctx), stale).Token()
	if err != nil {
		return usecase.OAuthToken{}, fmt.Errorf("refresh grant: %w", err)
	}
	return tokenOf(tok), nil
}

func (o *OAuth) withClient(ctx context.Context) context.Context {
	if o.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
}

func tokenOf(tok *oauth2.Token) usecase.OAuthToken {
	out := usecase.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		ExpiresIn:    tok.ExpiresIn,
	}
	if out.ExpiresIn == 0 {
		if raw, ok := tok.Extra("expires_in").(float64); ok {
			out.ExpiresIn = int64(raw)
		}
	}
	return out
}
