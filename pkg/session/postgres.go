package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over the session_pairs table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const pairColumns = `id, tenant_id, principal_id, token_hash, issuing_ip, issued_at, expires_at, revoked_at, replaced_by`

func (s *PostgresStore) Insert(ctx context.Context, pair *SessionPair) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_pairs (`+pairColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pair.ID, pair.TenantID, pair.PrincipalID, pair.TokenHash, pair.IssuingIP,
		pair.IssuedAt, pair.ExpiresAt, pair.RevokedAt, pair.ReplacedBy)
	if err != nil {
		return fmt.Errorf("session store: inserting pair: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByTokenHash(ctx context.Context, hash string) (*SessionPair, error) {
	return scanPair(s.pool.QueryRow(ctx,
		`SELECT `+pairColumns+` FROM session_pairs WHERE token_hash = $1`, hash))
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*SessionPair, error) {
	return scanPair(s.pool.QueryRow(ctx,
		`SELECT `+pairColumns+` FROM session_pairs WHERE id = $1`, id))
}

func scanPair(row pgx.Row) (*SessionPair, error) {
	var pair SessionPair
	err := row.Scan(&pair.ID, &pair.TenantID, &pair.PrincipalID, &pair.TokenHash,
		&pair.IssuingIP, &pair.IssuedAt, &pair.ExpiresAt, &pair.RevokedAt, &pair.ReplacedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session store: scanning pair: %w", err)
	}
	return &pair, nil
}

// Rotate revokes the old pair and inserts its successor in one
// transaction. The guarded UPDATE is the compare-and-swap: of two
// concurrent calls, exactly one sees a row flip from unrevoked to
// revoked; the other gets ErrAlreadyRotated.
func (s *PostgresStore) Rotate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, successor *SessionPair) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("session store: beginning rotation: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE session_pairs SET revoked_at = $2, replaced_by = $3
		 WHERE id = $1 AND revoked_at IS NULL`,
		oldID, revokedAt, successor.ID)
	if err != nil {
		return fmt.Errorf("session store: revoking old pair: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyRotated
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO session_pairs (`+pairColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		successor.ID, successor.TenantID, successor.PrincipalID, successor.TokenHash, successor.IssuingIP,
		successor.IssuedAt, successor.ExpiresAt, successor.RevokedAt, successor.ReplacedBy)
	if err != nil {
		return fmt.Errorf("session store: inserting successor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("session store: committing rotation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE session_pairs SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, at)
	if err != nil {
		return fmt.Errorf("session store: revoking pair: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAllForPrincipal(ctx context.Context, tenantID, principalID uuid.UUID, at time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE session_pairs SET revoked_at = $3
		 WHERE tenant_id = $1 AND principal_id = $2 AND revoked_at IS NULL`,
		tenantID, principalID, at)
	if err != nil {
		return 0, fmt.Errorf("session store: revoking principal sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM session_pairs WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("session store: deleting expired pairs: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*PostgresStore)(nil)
