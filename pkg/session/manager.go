package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/perimetra/tenantcore/pkg/accesstoken"
	"github.com/perimetra/tenantcore/pkg/logger"
)

// maxCascadeDepth bounds the replaced-by walk during reuse revocation.
// A legitimate chain grows by one link per refresh, so anything beyond
// this is pathological and gets cut off rather than walked forever.
const maxCascadeDepth = 64

// Credentials is what a successful login or refresh returns.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	SessionID    uuid.UUID
}

// Manager issues, rotates, and revokes session pairs.
type Manager struct {
	store      Store
	tokens     *accesstoken.Service
	refreshTTL time.Duration
	now        func() time.Time
	log        *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for security audit events.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock injects a clock for expiry decisions in tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a session manager. tokens mints the access half of
// each pair; refreshTTL bounds the refresh half.
func NewManager(store Store, tokens *accesstoken.Service, refreshTTL time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:      store,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		now:        time.Now,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue creates a fresh session pair for a principal that just passed
// primary authentication. issuingIP records the client address the
// grant was minted for.
func (m *Manager) Issue(ctx context.Context, tenantID, principalID uuid.UUID, issuingIP string) (*Credentials, error) {
	pair, creds, err := m.mint(tenantID, principalID, issuingIP)
	if err != nil {
		return nil, err
	}
	if err := m.store.Insert(ctx, pair); err != nil {
		return nil, fmt.Errorf("session: persisting pair: %w", err)
	}

	m.log.InfoContext(ctx, "session issued",
		logger.Event("session_issued"),
		logger.SessionID(pair.ID.String()),
		logger.TenantID(tenantID.String()),
		logger.PrincipalID(principalID.String()),
	)
	return creds, nil
}

// Rotate exchanges a refresh token for a successor pair. The presented
// token is looked up by hash only; revocation and expiry are decided
// here, after the fetch. The pair must belong to tenantID: a valid
// token presented under another tenant answers the same ErrInvalidToken
// as a garbage one, and stays usable where it belongs. issuingIP is
// stamped on the successor.
func (m *Manager) Rotate(ctx context.Context, tenantID uuid.UUID, refreshToken, issuingIP string) (*Credentials, error) {
	pair, err := m.store.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("session: fetching pair: %w", err)
	}
	if pair.TenantID != tenantID {
		return nil, ErrInvalidToken
	}

	now := m.now().UTC()

	if pair.RevokedAt != nil {
		if pair.Rotated() {
			m.cascadeRevoke(ctx, pair, now)
		}
		return nil, ErrInvalidToken
	}
	if !now.Before(pair.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	successor, creds, err := m.mint(pair.TenantID, pair.PrincipalID, issuingIP)
	if err != nil {
		return nil, err
	}

	err = m.store.Rotate(ctx, pair.ID, now, successor)
	if errors.Is(err, ErrAlreadyRotated) {
		// Lost a race with a concurrent Rotate on the same token. The
		// winner's successor exists; this presentation is a reuse.
		if fresh, ferr := m.store.GetByID(ctx, pair.ID); ferr == nil && fresh.Rotated() {
			m.cascadeRevoke(ctx, fresh, now)
		}
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("session: rotating pair: %w", err)
	}

	m.log.InfoContext(ctx, "session rotated",
		logger.Event("session_rotated"),
		logger.SessionID(successor.ID.String()),
		logger.TenantID(successor.TenantID.String()),
		logger.PrincipalID(successor.PrincipalID.String()),
	)
	return creds, nil
}

// Revoke marks the pair behind the refresh token revoked. Unknown and
// already-revoked tokens both succeed so logout stays idempotent and
// leaks nothing.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) error {
	pair, err := m.store.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("session: fetching pair: %w", err)
	}
	if err := m.store.Revoke(ctx, pair.ID, m.now().UTC()); err != nil {
		return fmt.Errorf("session: revoking pair: %w", err)
	}

	m.log.InfoContext(ctx, "session revoked",
		logger.Event("session_revoked"),
		logger.SessionID(pair.ID.String()),
		logger.TenantID(pair.TenantID.String()),
	)
	return nil
}

// RevokeAll kills every active session the principal holds within the
// tenant. Used for "log out everywhere" and admin security actions.
func (m *Manager) RevokeAll(ctx context.Context, tenantID, principalID uuid.UUID) (int64, error) {
	n, err := m.store.RevokeAllForPrincipal(ctx, tenantID, principalID, m.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("session: revoking all: %w", err)
	}
	if n > 0 {
		m.log.InfoContext(ctx, "all sessions revoked",
			logger.Event("session_revoked_all"),
			logger.TenantID(tenantID.String()),
			logger.PrincipalID(principalID.String()),
			slog.Int64("count", n),
		)
	}
	return n, nil
}

// DeleteExpired reclaims storage for pairs expired longer ago than
// retention. Active flows never depend on this running.
func (m *Manager) DeleteExpired(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := m.store.DeleteExpired(ctx, m.now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("session: deleting expired: %w", err)
	}
	return n, nil
}

// RunCleanup sweeps expired pairs on the given interval until the
// context is cancelled.
func (m *Manager) RunCleanup(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.DeleteExpired(ctx, retention)
			if err != nil {
				m.log.ErrorContext(ctx, "session cleanup failed", logger.Error(err))
				continue
			}
			if n > 0 {
				m.log.DebugContext(ctx, "session cleanup", slog.Int64("deleted", n))
			}
		}
	}
}

// mint builds a new pair and its client-facing credentials.
func (m *Manager) mint(tenantID, principalID uuid.UUID, issuingIP string) (*SessionPair, *Credentials, error) {
	refresh, hash, err := newRefreshToken()
	if err != nil {
		return nil, nil, err
	}
	access, err := m.tokens.Generate(principalID, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("session: minting access token: %w", err)
	}

	now := m.now().UTC()
	pair := &SessionPair{
		ID:          uuid.New(),
		TenantID:    tenantID,
		PrincipalID: principalID,
		TokenHash:   hash,
		IssuingIP:   issuingIP,
		IssuedAt:    now,
		ExpiresAt:   now.Add(m.refreshTTL),
	}
	creds := &Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.tokens.TTL().Seconds()),
		SessionID:    pair.ID,
	}
	return pair, creds, nil
}

// cascadeRevoke walks the replaced-by chain from a reused pair and
// revokes every descendant. This is the theft response: whoever holds
// the live tail of the chain loses it and must log in again. The event
// is logged distinctly from ordinary token failures.
func (m *Manager) cascadeRevoke(ctx context.Context, reused *SessionPair, now time.Time) {
	m.log.WarnContext(ctx, "refresh token reuse detected",
		logger.Event("session_reuse_detected"),
		logger.SessionID(reused.ID.String()),
		logger.TenantID(reused.TenantID.String()),
		logger.PrincipalID(reused.PrincipalID.String()),
	)

	next := reused.ReplacedBy
	for depth := 0; next != nil && depth < maxCascadeDepth; depth++ {
		pair, err := m.store.GetByID(ctx, *next)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				m.log.ErrorContext(ctx, "cascade revocation aborted", logger.Error(err))
			}
			return
		}
		if err := m.store.Revoke(ctx, pair.ID, now); err != nil {
			m.log.ErrorContext(ctx, "cascade revocation aborted", logger.Error(err))
			return
		}
		next = pair.ReplacedBy
	}
}
