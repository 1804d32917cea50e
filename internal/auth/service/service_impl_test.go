package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/finbook/internal/auth/domain"
	authrepo "github.com/smallbiznis/finbook/internal/auth/repository"
	authservice "github.com/smallbiznis/finbook/internal/auth/service"
	"github.com/smallbiznis/finbook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_auth_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = db.AutoMigrate(&authdomain.User{}, &authdomain.Session{})
	require.NoError(t, err)
	return db
}

func newService(t *testing.T, db *gorm.DB) authdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	return authservice.New(authservice.Params{
		Cfg:      config.Config{SessionTTLHours: 1},
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     authrepo.Provide(),
		Sessions: authrepo.ProvideSessions(),
	})
}

func TestLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Username: "Alice",
		FullName: "Alice Example",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	// Usernames are case-insensitive on login.
	result, err := svc.Login(ctx, authdomain.LoginRequest{
		Username: "ALICE",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RawToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	identity, err := svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.User.Username)

	require.NoError(t, svc.Logout(ctx, result.RawToken))

	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, authdomain.ErrSessionRevoked)
}

func TestLoginRejectsBadCredentialsAndInactive(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	user, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Username: "bob",
		Password: "password1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Username: "bob", Password: "wrong"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Username: "nobody", Password: "password1"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	inactive := false
	_, err = svc.UpdateUser(ctx, user.ID.String(), authdomain.UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Username: "bob", Password: "password1"})
	assert.ErrorIs(t, err, authdomain.ErrUserInactive)
}

func TestDeactivationKillsLiveSessions(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	user, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Username: "carol",
		Password: "password1",
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, authdomain.LoginRequest{Username: "carol", Password: "password1"})
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateUser(ctx, user.ID.String(), authdomain.UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, authdomain.ErrUserInactive)
}

func TestCannotDeleteSelf(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	admin, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Username: "admin",
		Password: "admin123",
	})
	require.NoError(t, err)

	other, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{
		Username: "other",
		Password: "password1",
	})
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, admin.ID, admin.ID.String())
	assert.ErrorIs(t, err, authdomain.ErrCannotDeleteSelf)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, other.ID.String()))

	_, err = svc.GetUser(ctx, other.ID.String())
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}

func TestDuplicateUsernameRejected(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Username: "dave", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, authdomain.CreateUserRequest{Username: "Dave", Password: "password2"})
	assert.ErrorIs(t, err, authdomain.ErrUserExists)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	user, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Username: "erin", Password: "password1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, user.ID.String(), "short"), authdomain.ErrInvalidPassword)
	require.NoError(t, svc.ResetPassword(ctx, user.ID.String(), "newpassword"))

	_, err = svc.Login(ctx, authdomain.LoginRequest{Username: "erin", Password: "password1"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Username: "erin", Password: "newpassword"})
	assert.NoError(t, err)
}
