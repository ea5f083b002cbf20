package usecase

import (
	"context"
	"testing"

	"arcade/internal/domain"
	"arcade/internal/infrastructure/cache"
	"arcade/internal/infrastructure/repository"
	"arcade/internal/infrastructure/security"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuth(t *testing.T) (*AuthUseCase, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Profile{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	uc := NewAuthUseCase(
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		cache.NewTokenCache(rdb),
		security.NewPasswordHasher(),
		security.NewTokenManager("test-access", "test-refresh"),
	)
	return uc, db
}

func TestRegister_CreatesUserWithEmptyProfile(t *testing.T) {
	uc, db := newTestAuth(t)
	ctx := context.Background()

	access, refresh, err := uc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	var users int64
	require.NoError(t, db.Model(&domain.User{}).Where("username = ?", "alice").Count(&users).Error)
	assert.EqualValues(t, 1, users)

	// Ровно один профиль, созданный пустым
	var user domain.User
	require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)
	var profiles []domain.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&profiles).Error)
	require.Len(t, profiles, 1)
	assert.Empty(t, profiles[0].Bio)
	assert.Empty(t, profiles[0].AvatarURL)
	assert.Nil(t, profiles[0].DateOfBirth)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	uc, db := newTestAuth(t)
	ctx := context.Background()

	_, _, err := uc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = uc.Register(ctx, "alice", "second@example.com", "secret456")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	// Второй профиль не появился
	var profiles int64
	require.NoError(t, db.Model(&domain.Profile{}).Count(&profiles).Error)
	assert.EqualValues(t, 1, profiles)
}

func TestLogin(t *testing.T) {
	uc, _ := newTestAuth(t)
	ctx := context.Background()

	_, _, err := uc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	access, refresh, err := uc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	_, _, err = uc.Login(ctx, "alice", "wrong")
	assert.EqualError(t, err, "invalid credentials")

	_, _, err = uc.Login(ctx, "nobody", "secret123")
	assert.EqualError(t, err, "invalid credentials")
}

func TestRefresh_RotatesToken(t *testing.T) {
	uc, _ := newTestAuth(t)
	ctx := context.Background()

	_, refresh, err := uc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	access2, refresh2, err := uc.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEmpty(t, refresh2)

	// Старый refresh отозван ротацией
	_, _, err = uc.Refresh(ctx, refresh)
	assert.Error(t, err)
}

func TestLogout_RevokesRefresh(t *testing.T) {
	uc, _ := newTestAuth(t)
	ctx := context.Background()

	_, refresh, err := uc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, refresh))

	_, _, err = uc.Refresh(ctx, refresh)
	assert.Error(t, err)
}
