package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoflow/restoflow/internal/domain"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestStore(t), []byte("test-secret"), time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "Alice@Example.com", "s3cret", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, []string{domain.RoleClient}, user.Roles)

	_, token, err = auth.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	verified, err := auth.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestRegisterValidation(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "not-an-email", "s3cret", "", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = auth.Register(ctx, "a@b.com", "short", "", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, err = auth.Register(ctx, "a@b.com", "s3cret", "", "ROLE_SUPERUSER")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, _, err = auth.Register(ctx, "a@b.com", "s3cret", "", "")
	require.NoError(t, err)
	_, _, err = auth.Register(ctx, "a@b.com", "other-password", "", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "bob@example.com", "s3cret", "", "")
	require.NoError(t, err)

	_, _, errUnknown := auth.Login(ctx, "nobody@example.com", "s3cret")
	_, _, errBadPass := auth.Login(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errBadPass, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errBadPass.Error())
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "carol@example.com", "s3cret", "", "")
	require.NoError(t, err)

	_, err = auth.VerifyToken(ctx, token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = auth.VerifyToken(ctx, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// token signed with a different secret
	other := NewAuthService(newTestStore(t), []byte("other-secret"), time.Hour)
	_, otherToken, err := other.Register(ctx, "carol@example.com", "s3cret", "", "")
	require.NoError(t, err)
	_, err = auth.VerifyToken(ctx, otherToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	store := newTestStore(t)
	auth := NewAuthService(store, []byte("test-secret"), -time.Minute)
	ctx := context.Background()

	_, token, err := auth.Register(ctx, "dave@example.com", "s3cret", "", "")
	require.NoError(t, err)

	_, err = auth.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
