package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"slotswap-api/core/config"
	"slotswap-api/core/errors"
	"slotswap-api/modules/auth/dto"
	"slotswap-api/modules/auth/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAuthRepo struct {
	byEmail map[string]*entity.User
	byID    map[uuid.UUID]*entity.User
	handles map[string]bool
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{
		byEmail: map[string]*entity.User{},
		byID:    map[uuid.UUID]*entity.User{},
		handles: map[string]bool{},
	}
}

func (r *memAuthRepo) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	cp := *user
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.byEmail[cp.Email] = &cp
	r.byID[cp.ID] = &cp
	r.handles[cp.Handle] = true
	out := cp
	return &out, nil
}

func (r *memAuthRepo) GetUserByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memAuthRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memAuthRepo) HandleExists(_ context.Context, handle string) (bool, error) {
	return r.handles[handle], nil
}

func (r *memAuthRepo) UpdateAvatarURL(_ context.Context, id uuid.UUID, url string) error {
	if u, ok := r.byID[id]; ok {
		u.AvatarURL = &url
	}
	return nil
}

type memCache struct {
	blacklist map[string]bool
	attempts  map[string]int
}

func newMemCache() *memCache {
	return &memCache{blacklist: map[string]bool{}, attempts: map[string]int{}}
}

func (c *memCache) AddToTokenBlacklist(_ context.Context, token string, _ time.Duration) error {
	c.blacklist[token] = true
	return nil
}

func (c *memCache) IsTokenBlacklisted(_ context.Context, token string) (bool, error) {
	return c.blacklist[token], nil
}

func (c *memCache) IncrementLoginAttempt(_ context.Context, key string) error {
	c.attempts[key]++
	return nil
}

func (c *memCache) IsLoginBlocked(_ context.Context, key string) (int, error) {
	return c.attempts[key], nil
}

func (c *memCache) Expire(_ context.Context, _ string, _ time.Duration) error { return nil }

func (c *memCache) Del(_ context.Context, key string) error {
	delete(c.attempts, key)
	return nil
}

func (c *memCache) Publish(_ context.Context, _ string, _ []byte) error { return nil }

func (c *memCache) Close() error { return nil }

type memStorage struct {
	uploads map[string][]byte
}

func (s *memStorage) Upload(_ context.Context, key, _ string, body []byte) (string, error) {
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[key] = body
	return fmt.Sprintf("https://cdn.example.com/%s", key), nil
}

func setTestConfig(t *testing.T) {
	t.Helper()
	config.Set(&config.Config{
		Auth: config.AuthConfig{AccessTokenSecret: "test-secret", AccessTokenTTL: 60},
	})
}

func registerReq() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:     "Alice Smith",
		Email:    "Alice@Example.com",
		Password: "password123",
	}
}

func TestRegister(t *testing.T) {
	setTestConfig(t)

	t.Run("creates a user with a slug handle and a token", func(t *testing.T) {
		repo := newMemAuthRepo()
		svc := NewAuthService(repo, newMemCache(), &memStorage{})

		resp, appErr := svc.Register(context.Background(), registerReq())
		require.Nil(t, appErr)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "alice@example.com", resp.User.Email)
		assert.Equal(t, "alice-smith", resp.User.Handle)
	})

	t.Run("suffixes the handle when taken", func(t *testing.T) {
		repo := newMemAuthRepo()
		repo.handles["alice-smith"] = true
		svc := NewAuthService(repo, newMemCache(), &memStorage{})

		resp, appErr := svc.Register(context.Background(), registerReq())
		require.Nil(t, appErr)
		assert.NotEqual(t, "alice-smith", resp.User.Handle)
		assert.Contains(t, resp.User.Handle, "alice-smith-")
	})

	t.Run("rejects a duplicate email", func(t *testing.T) {
		repo := newMemAuthRepo()
		svc := NewAuthService(repo, newMemCache(), &memStorage{})

		_, appErr := svc.Register(context.Background(), registerReq())
		require.Nil(t, appErr)

		_, appErr = svc.Register(context.Background(), registerReq())
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrAlreadyExists, appErr.Code)
	})

	t.Run("validates input", func(t *testing.T) {
		svc := NewAuthService(newMemAuthRepo(), newMemCache(), &memStorage{})

		req := registerReq()
		req.Email = "not-an-email"
		_, appErr := svc.Register(context.Background(), req)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)

		req = registerReq()
		req.Password = "short"
		_, appErr = svc.Register(context.Background(), req)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})
}

func TestLogin(t *testing.T) {
	setTestConfig(t)

	setup := func(t *testing.T) (AuthServiceInterface, *memCache) {
		t.Helper()
		repo := newMemAuthRepo()
		c := newMemCache()
		svc := NewAuthService(repo, c, &memStorage{})
		_, appErr := svc.Register(context.Background(), registerReq())
		require.Nil(t, appErr)
		return svc, c
	}

	t.Run("valid credentials", func(t *testing.T) {
		svc, _ := setup(t)
		resp, appErr := svc.Login(context.Background(), &dto.LoginRequest{
			Email: "alice@example.com", Password: "password123",
		})
		require.Nil(t, appErr)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := setup(t)
		_, appErr := svc.Login(context.Background(), &dto.LoginRequest{
			Email: "alice@example.com", Password: "nope",
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	})

	t.Run("throttles after repeated failures", func(t *testing.T) {
		svc, c := setup(t)
		for i := 0; i < 5; i++ {
			_, appErr := svc.Login(context.Background(), &dto.LoginRequest{
				Email: "alice@example.com", Password: "nope",
			})
			require.NotNil(t, appErr)
		}
		assert.Equal(t, 5, c.attempts["alice@example.com"])

		// Even the right password is refused while blocked.
		_, appErr := svc.Login(context.Background(), &dto.LoginRequest{
			Email: "alice@example.com", Password: "password123",
		})
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrForbidden, appErr.Code)
	})
}

func TestLogout(t *testing.T) {
	setTestConfig(t)
	c := newMemCache()
	svc := NewAuthService(newMemAuthRepo(), c, &memStorage{})

	appErr := svc.Logout(context.Background(), "some-token", time.Now().Add(time.Hour))
	require.Nil(t, appErr)
	assert.True(t, c.blacklist["some-token"])

	// An already-expired token needs no blacklisting.
	appErr = svc.Logout(context.Background(), "stale-token", time.Now().Add(-time.Minute))
	require.Nil(t, appErr)
	assert.False(t, c.blacklist["stale-token"])
}

func TestUploadAvatar(t *testing.T) {
	setTestConfig(t)

	setup := func(t *testing.T) (AuthServiceInterface, *memAuthRepo, uuid.UUID) {
		t.Helper()
		repo := newMemAuthRepo()
		svc := NewAuthService(repo, newMemCache(), &memStorage{})
		resp, appErr := svc.Register(context.Background(), registerReq())
		require.Nil(t, appErr)
		return svc, repo, resp.User.ID
	}

	t.Run("stores the image and saves the url", func(t *testing.T) {
		svc, repo, userID := setup(t)

		resp, appErr := svc.UploadAvatar(context.Background(), userID, "image/png", []byte("png-bytes"))
		require.Nil(t, appErr)
		assert.Contains(t, resp.AvatarURL, "avatars/")
		require.NotNil(t, repo.byID[userID].AvatarURL)
		assert.Equal(t, resp.AvatarURL, *repo.byID[userID].AvatarURL)
	})

	t.Run("rejects unsupported content types", func(t *testing.T) {
		svc, _, userID := setup(t)

		_, appErr := svc.UploadAvatar(context.Background(), userID, "image/gif", []byte("gif-bytes"))
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
	})
}
