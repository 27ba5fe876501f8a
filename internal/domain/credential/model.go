package credential

import (
	"fmt"
	"strings"
	"time"
)

type Provider string

const ProviderYahoo Provider = "yahoo"

// Credential is a user's OAuth token pair for one external provider.
type Credential struct {
	UserID       string
	Provider     Provider
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

func (c Credential) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("credential user id is required")
	}
	if c.Provider == "" {
		return fmt.Errorf("credential provider is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("credential access token is required")
	}
	if c.RefreshToken == "" {
		return fmt.Errorf("credential refresh token is required")
	}
	return nil
}

// UsableAt reports whether the access token is still valid at now, keeping skew in reserve.
func (c Credential) UsableAt(now time.Time, skew time.Duration) bool {
	if c.AccessToken == "" || c.ExpiresAt.IsZero() {
		return false
	}
	return now.Add(skew).Before(c.ExpiresAt)
}
