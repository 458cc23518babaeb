package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/lab-booking-backend/internal/auth"
	"github.com/nekogravitycat/lab-booking-backend/internal/user"
)

func newUserService() user.Service {
	// bcrypt.MinCost keeps hashing fast in tests.
	return user.NewService(user.NewMemoryRepository(), auth.NewBcryptPasswordHasher(4))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Example.com ", "correct-horse", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.RoleMember, u.Role)
	require.NotNil(t, u.DisplayName)
	assert.Equal(t, "Alice", *u.DisplayName)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	t.Run("login with normalized email", func(t *testing.T) {
		got, err := svc.Login(ctx, "ALICE@example.COM", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.NotNil(t, got.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("unknown email reports the same error as a bad password", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	t.Run("blank email", func(t *testing.T) {
		_, err := svc.Register(ctx, "   ", "long-enough-pass", "")
		assert.ErrorIs(t, err, user.ErrEmailRequired)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob@example.com", "short", "")
		assert.ErrorIs(t, err, user.ErrPasswordTooShort)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob@example.com", "long-enough-pass", "")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "BOB@example.com", "long-enough-pass", "")
		assert.ErrorIs(t, err, user.ErrEmailAlreadyUsed)
	})
}

func TestRoleCapabilities(t *testing.T) {
	assert.False(t, user.CanCancelOthers(user.RoleMember))
	assert.True(t, user.CanCancelOthers(user.RoleStaff))
	assert.True(t, user.CanCancelOthers(user.RoleAdmin))

	assert.False(t, user.CanAdminister(user.RoleMember))
	assert.False(t, user.CanAdminister(user.RoleStaff))
	assert.True(t, user.CanAdminister(user.RoleAdmin))
}
