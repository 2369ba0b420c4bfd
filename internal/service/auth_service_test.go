package service

import (
	"context"
	"encoding/base64"
	"testing"

	"scaffold/internal/auth"
	"scaffold/internal/models"
	"scaffold/internal/repository"
	"scaffold/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-that-is-long-enough-123"

func newAuthService(t *testing.T) (*AuthService, repository.UserRepository) {
	t.Helper()
	rdb, _ := testutil.NewRedis(t)
	users := repository.NewUserRepository(testutil.NewDB(t))
	svc := NewAuthService(users, auth.NewHasher(bcrypt.MinCost), auth.NewTokens(testSecret), auth.NewRevocations(rdb))
	return svc, users
}

func TestAuthService_LoginAndResolve(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Provision(ctx, ProvisionInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.Password)

	res, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, user.ID, res.User.ID)

	identity, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.True(t, identity.Authenticated())
	assert.False(t, identity.IsAdmin())
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Provision(ctx, ProvisionInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice@example.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(wrongPassword))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, "Invalid credentials", wrongPassword.Error())
}

func TestAuthService_LoginValidation(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "not-an-email", "secret1")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	_, err = svc.Login(context.Background(), "alice@example.com", "123")
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestAuthService_ResolveReadsAdminFromStore(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Provision(ctx, ProvisionInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Promote(ctx, "bob")
	require.NoError(t, err)

	identity, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin(), "token issued before promotion still resolves as admin")
}

func TestAuthService_ResolveAnonymous(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	orphan, _, err := auth.NewTokens(testSecret).Issue(999, "ghost")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "garbage",
		"unknown user": orphan,
	} {
		t.Run(name, func(t *testing.T) {
			identity, err := svc.Resolve(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, models.Anonymous, identity)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Provision(ctx, ProvisionInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Token))

	identity, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.False(t, identity.Authenticated())

	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestAuthService_CreateAdmin(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	user, password, err := svc.CreateAdmin(ctx, "root", "root@example.com")
	require.NoError(t, err)
	assert.True(t, user.Admin)

	raw, err := base64.RawURLEncoding.DecodeString(password)
	require.NoError(t, err)
	assert.Len(t, raw, 16)

	stored, err := users.GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.NotEqual(t, password, stored.Password)

	res, err := svc.Login(ctx, "root@example.com", password)
	require.NoError(t, err)
	identity, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())

	admins, err := svc.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestAuthService_ProvisionConflictsAndValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Provision(ctx, ProvisionInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   ProvisionInput
		code string
	}{
		{name: "duplicate email", in: ProvisionInput{Username: "alice2", Email: "alice@example.com", Password: "secret1"}, code: models.CodeConflict},
		{name: "blank username", in: ProvisionInput{Username: " ", Email: "x@example.com", Password: "secret1"}, code: models.CodeValidation},
		{name: "short password", in: ProvisionInput{Username: "x", Email: "x@example.com", Password: "123"}, code: models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Provision(ctx, tt.in)
			assert.Equal(t, tt.code, models.ErrorCode(err))
		})
	}
}

func TestAuthService_PromoteUnknown(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Promote(context.Background(), "nobody")
	assert.True(t, models.IsNotFound(err))
}
