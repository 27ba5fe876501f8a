package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
	qb "github.com/riskibarqy/fantasy-trade-market/internal/platform/querybuilder"
)

const credentialColumns = "user_id, provider, access_token, refresh_token, expires_at, updated_at"

type CredentialRepository struct {
	db *sqlx.DB
}

func NewCredentialRepository(db *sqlx.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Get(ctx context.Context, userID string, provider credential.Provider) (credential.Credential, bool, error) {
	query, args, err := qb.Select(credentialColumns).From("provider_credentials").
		Where(qb.Eq("user_id", userID), qb.Eq("provider", string(provider))).
		ToSQL()
	if err != nil {
		return credential.Credential{}, false, fmt.Errorf("build select credential query: %w", err)
	}

	var row credentialTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return credential.Credential{}, false, nil
		}
		return credential.Credential{}, false, fmt.Errorf("select credential: %w", err)
	}
	return credential.Credential{
		UserID:       row.UserID,
		Provider:     credential.Provider(row.Provider),
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		ExpiresAt:    row.ExpiresAt,
		UpdatedAt:    row.UpdatedAt,
	}, true, nil
}

func (r *CredentialRepository) Upsert(ctx context.Context, c credential.Credential) error {
	if err := c.Validate(); err != nil {
		return err
	}
	query, args, err := qb.InsertModel("provider_credentials", credentialTableModel{
		UserID:       c.UserID,
		Provider:     string(c.Provider),
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		ExpiresAt:    c.ExpiresAt,
		UpdatedAt:    c.UpdatedAt,
	}, "ON CONFLICT (user_id, provider) DO UPDATE SET "+qb.Excluded("access_token", "refresh_token", "expires_at", "updated_at"))
	if err != nil {
		return fmt.Errorf("build upsert credential query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID string, provider credential.Provider) error {
	query, args, err := qb.DeleteFrom("provider_credentials").
		Where(qb.Eq("user_id", userID), qb.Eq("provider", string(provider))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete credential query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) ListUserIDs(ctx context.Context, provider credential.Provider) ([]string, error) {
	query, args, err := qb.Select("user_id").From("provider_credentials").
		Where(qb.Eq("provider", string(provider))).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list credential users query: %w", err)
	}
	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list credential users: %w", err)
	}
	return out, nil
}
