package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxops/fbrgate/internal/auth/domain"
	"github.com/taxops/fbrgate/internal/auth/repository"
	"github.com/taxops/fbrgate/internal/config"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, context.Context, snowflake.ID) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Config: config.Config{AuthJWTSecret: "test-secret"},
		Repo:   repository.Provide(),
	})

	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	return svc, ctx, tenantID
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, ctx, tenantID := newTestService(t)

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "Ops@Example.PK",
		Password: "correct horse",
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "ops@example.pk", user.Email)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	result, err := svc.Login(ctx, domain.LoginRequest{
		TenantID: tenantID.String(),
		Email:    "ops@example.pk",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	claims, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, ctx, tenantID := newTestService(t)

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "ops@example.pk",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{
		TenantID: tenantID.String(),
		Email:    "ops@example.pk",
		Password: "wrong horse",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, tenantID := newTestService(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		TenantID: tenantID.String(),
		Email:    "nobody@example.pk",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	svc, ctx, _ := newTestService(t)

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "not-an-email", Password: "long enough"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@b.pk", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@b.pk", Password: "long enough", Role: "superuser"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, ctx, _ := newTestService(t)

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "dup@example.pk", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "dup@example.pk", Password: "long enough"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	svc, ctx, tenantID := newTestService(t)

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "ops@example.pk", Password: "correct horse"})
	require.NoError(t, err)
	result, err := svc.Login(ctx, domain.LoginRequest{
		TenantID: tenantID.String(),
		Email:    "ops@example.pk",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, result.Token+"x")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc, ctx, tenantID := newTestService(t)

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "ops@example.pk", Password: "first password"})
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, user.ID.String(), "second password"))

	_, err = svc.Login(ctx, domain.LoginRequest{TenantID: tenantID.String(), Email: "ops@example.pk", Password: "first password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{TenantID: tenantID.String(), Email: "ops@example.pk", Password: "second password"})
	assert.NoError(t, err)
}
