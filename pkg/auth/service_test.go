package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/perimetra/tenantcore/pkg/auth"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()
	return auth.NewService(auth.NewMemoryStorage(), auth.WithBcryptCost(bcrypt.MinCost))
}

func TestRegisterAuthenticate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Owner@Example.COM", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)

	got, err := svc.Authenticate(ctx, "owner@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "owner@example.com", "correct horse battery")
	require.NoError(t, err)

	// Wrong password and unknown email fail with the same error.
	_, err = svc.Authenticate(ctx, "owner@example.com", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct horse battery")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "owner@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "owner@example.com", "another password")
	require.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "correct horse battery")
	require.ErrorIs(t, err, auth.ErrInvalidEmail)

	_, err = svc.Register(ctx, "owner@example.com", "short")
	require.ErrorIs(t, err, auth.ErrWeakPassword)

	_, err = svc.Register(ctx, "owner@example.com", strings.Repeat("x", 200))
	require.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestChangePassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "owner@example.com", "original password")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong", "replacement pass")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "original password", "replacement pass"))

	_, err = svc.Authenticate(ctx, "owner@example.com", "original password")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "owner@example.com", "replacement pass")
	require.NoError(t, err)
}
