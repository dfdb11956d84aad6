package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IVANFROL/reklama-oleg/pkg/config"
	"github.com/IVANFROL/reklama-oleg/pkg/errutil"
	"github.com/IVANFROL/reklama-oleg/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = ttl

	return NewService(ServiceParams{DB: db, Node: node, Config: cfg})
}

func errCode(t *testing.T, err error) errutil.CoreStatus {
	t.Helper()

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	return be.Code
}

func TestRegister(t *testing.T) {
	svc := newTestService(t, 30*time.Minute)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, 0.0, user.Balance)
	require.Equal(t, RoleUser, user.Role)
	require.True(t, user.IsActive)
	require.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t, 30*time.Minute)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email:    "other@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadRequest, errCode(t, err))
	require.Contains(t, err.Error(), "Username already registered")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t, 30*time.Minute)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "secret123",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadRequest, errCode(t, err))
	require.Contains(t, err.Error(), "Email already registered")
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t, 30*time.Minute)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(context.Background(), "alice", "wrong")
	require.Error(t, err)
	require.Equal(t, errutil.StatusUnauthorized, errCode(t, err))

	_, err = svc.Authenticate(context.Background(), "nobody", "secret123")
	require.Error(t, err)
	require.Equal(t, errutil.StatusUnauthorized, errCode(t, err))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService(t, 30*time.Minute)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	principal, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, principal.UserID)
	require.Equal(t, "alice", principal.Username)
	require.Equal(t, RoleUser, principal.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestService(t, -time.Minute)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	require.Equal(t, errutil.StatusUnauthorized, errCode(t, err))
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newTestService(t, 30*time.Minute)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	require.Equal(t, errutil.StatusUnauthorized, errCode(t, err))
}

func TestGetUserMissing(t *testing.T) {
	svc := newTestService(t, 30*time.Minute)

	_, err := svc.GetUser(context.Background(), 424242)
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errCode(t, err))
}
