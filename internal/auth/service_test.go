package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func setupService(t *testing.T, cfg config.Auth) *Service {
	t.Helper()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4
	}
	return NewService(users.NewRepository(setupTestDB(t)), cfg)
}

func TestService_CreateUser(t *testing.T) {
	svc := setupService(t, config.Auth{})

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid user", username: "reader", email: "reader@example.com", password: "password12345"},
		{name: "missing username", email: "a@example.com", password: "password12345", wantErr: ErrUsernameRequired},
		{name: "missing email", username: "someone", password: "password12345", wantErr: ErrEmailRequired},
		{name: "missing password", username: "someone", email: "a@example.com", wantErr: ErrPasswordRequired},
		{name: "username too short", username: "ab", email: "a@example.com", password: "password12345", wantErr: ErrUsernameInvalid},
		{name: "username with spaces", username: "a b c", email: "a@example.com", password: "password12345", wantErr: ErrUsernameInvalid},
		{name: "bad email", username: "someone", email: "not-an-email", password: "password12345", wantErr: ErrEmailInvalid},
		{name: "short password", username: "someone", email: "a@example.com", password: "short", wantErr: ErrPasswordTooShort},
		{name: "duplicate username", username: "reader", email: "other@example.com", password: "password12345", wantErr: ErrUserExists},
		{name: "duplicate email", username: "other", email: "reader@example.com", password: "password12345", wantErr: ErrUserExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.CreateUser(tt.username, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := setupService(t, config.Auth{MaxLoginAttempts: 3, LockoutDuration: time.Hour})

	created, err := svc.CreateUser("reader", "reader@example.com", "password12345")
	require.NoError(t, err)

	t.Run("by username", func(t *testing.T) {
		user, err := svc.Authenticate("reader", "password12345")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("by email", func(t *testing.T) {
		_, err := svc.Authenticate("reader@example.com", "password12345")
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate("ghost", "password12345")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("lockout after repeated failures", func(t *testing.T) {
		for range 3 {
			_, err := svc.Authenticate("reader", "wrong-password")
			assert.ErrorIs(t, err, ErrInvalidPassword)
		}

		_, err := svc.Authenticate("reader", "password12345")
		assert.ErrorIs(t, err, ErrAccountLocked)
	})
}

func TestService_TokenOperations(t *testing.T) {
	svc := setupService(t, config.Auth{})
	user, err := svc.CreateUser("api", "api@example.com", "password12345")
	require.NoError(t, err)

	token, err := svc.GenerateToken(user.ID)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, HashToken(token), got.TokenHash)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-real-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.RevokeToken(user.ID))
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.GenerateToken(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_TokenExpiry(t *testing.T) {
	db := setupTestDB(t)
	repo := users.NewRepository(db)
	svc := NewService(repo, config.Auth{BcryptCost: 4, TokenExpiry: time.Hour})

	user, err := svc.CreateUser("api", "api@example.com", "password12345")
	require.NoError(t, err)
	token, err := svc.GenerateToken(user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateUserFields(user.ID, map[string]any{
		"token_created_at": time.Now().Add(-2 * time.Hour),
	}))

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_ChangePassword(t *testing.T) {
	svc := setupService(t, config.Auth{})
	user, err := svc.CreateUser("reader", "reader@example.com", "oldpassword123")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "wrongpassword1", "newpassword123"), ErrInvalidPassword)
	assert.ErrorIs(t, svc.ChangePassword(user.ID, "oldpassword123", "short"), ErrPasswordTooShort)
	require.NoError(t, svc.ChangePassword(user.ID, "oldpassword123", "newpassword123"))

	_, err = svc.Authenticate("reader", "newpassword123")
	assert.NoError(t, err)
	_, err = svc.Authenticate("reader", "oldpassword123")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestService_UpdateProfile(t *testing.T) {
	svc := setupService(t, config.Auth{})
	reader, err := svc.CreateUser("reader", "reader@example.com", "password12345")
	require.NoError(t, err)
	_, err = svc.CreateUser("other", "other@example.com", "password12345")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(reader.ID, "other", "reader@example.com")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = svc.UpdateProfile(reader.ID, "reader", "other@example.com")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = svc.UpdateProfile(reader.ID, "r", "reader@example.com")
	assert.ErrorIs(t, err, ErrUsernameInvalid)
	_, err = svc.UpdateProfile(reader.ID, "reader", "not-an-email")
	assert.ErrorIs(t, err, ErrEmailInvalid)

	// Keeping one's own username while changing the email is allowed
	updated, err := svc.UpdateProfile(reader.ID, "reader", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = svc.Authenticate("new@example.com", "password12345")
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(9999, "ghost", "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_UpdateTheme(t *testing.T) {
	svc := setupService(t, config.Auth{})
	user, err := svc.CreateUser("reader", "reader@example.com", "password12345")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, user.Theme)

	updated, err := svc.UpdateTheme(user.ID, ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, updated.Theme)

	_, err = svc.UpdateTheme(user.ID, "solarized")
	assert.ErrorIs(t, err, ErrThemeInvalid)

	_, err = svc.UpdateTheme(9999, ThemeDark)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_HasUsers(t *testing.T) {
	svc := setupService(t, config.Auth{})

	has, err := svc.HasUsers()
	require.NoError(t, err)
	assert.False(t, has)

	_, err = svc.CreateUser("reader", "reader@example.com", "password12345")
	require.NoError(t, err)

	has, err = svc.HasUsers()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestService_IsAuthEnabled(t *testing.T) {
	assert.False(t, NewService(nil, config.Auth{Mode: config.AuthModeNone}).IsAuthEnabled())
	assert.True(t, NewService(nil, config.Auth{Mode: config.AuthModeLocal}).IsAuthEnabled())
}
