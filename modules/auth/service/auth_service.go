package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"slotswap-api/core/cache"
	"slotswap-api/core/constants"
	"slotswap-api/core/errors"
	"slotswap-api/core/logger"
	"slotswap-api/core/storage"
	"slotswap-api/core/utils"
	"slotswap-api/modules/auth/dto"
	"slotswap-api/modules/auth/entity"
	"slotswap-api/modules/auth/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type AuthService struct {
	repo    repository.AuthRepositoryInterface
	cache   cache.Cache
	storage storage.ObjectStorage
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError)
	Logout(ctx context.Context, token string, expiresAt time.Time) *errors.AppError
	UploadAvatar(ctx context.Context, userID uuid.UUID, contentType string, data []byte) (*dto.AvatarResponse, *errors.AppError)
}

func NewAuthService(repo repository.AuthRepositoryInterface, c cache.Cache, s storage.ObjectStorage) AuthServiceInterface {
	return &AuthService{repo: repo, cache: c, storage: s}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, *errors.AppError) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "name is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid email address", err)
	}
	if len(req.Password) < 8 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "password must be at least 8 characters", nil)
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to check email", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "an account with this email already exists", nil)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to hash password", err)
	}

	handle, appErr := s.uniqueHandle(ctx, name)
	if appErr != nil {
		return nil, appErr
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		Handle:       handle,
		PasswordHash: hash,
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create user", err)
	}

	token, err := utils.GenerateAccessToken(created.ID, created.Email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to issue token", err)
	}

	logger.Info("AuthService:Register:Success", "user_id", created.ID, "handle", created.Handle)
	return &dto.AuthResponse{AccessToken: token, User: dto.ToUserResponse(created)}, nil
}

// uniqueHandle derives a marketplace handle from the display name, suffixing
// a short id when the slug is taken.
func (s *AuthService) uniqueHandle(ctx context.Context, name string) (string, *errors.AppError) {
	base := slug.Make(name)
	if base == "" {
		base = "user"
	}

	taken, err := s.repo.HandleExists(ctx, base)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to check handle", err)
	}
	if !taken {
		return base, nil
	}
	return fmt.Sprintf("%s-%s", base, strings.ToLower(utils.GenerateID())), nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	attempts, err := s.cache.IsLoginBlocked(ctx, email)
	if err != nil {
		logger.Error("AuthService:Login:IsLoginBlocked:Error:", err)
	}
	if attempts >= constants.MaxLoginAttempts {
		return nil, errors.NewAppError(errors.ErrForbidden, "too many failed attempts, try again later", nil)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		if errInc := s.cache.IncrementLoginAttempt(ctx, email); errInc != nil {
			logger.Error("AuthService:Login:IncrementLoginAttempt:Error:", errInc)
		} else if errExp := s.cache.Expire(ctx, email, constants.BlockDuration); errExp != nil {
			logger.Error("AuthService:Login:Expire:Error:", errExp)
		}
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid email or password", nil)
	}

	if errDel := s.cache.Del(ctx, email); errDel != nil {
		logger.Error("AuthService:Login:Del:Error:", errDel)
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to issue token", err)
	}

	return &dto.AuthResponse{AccessToken: token, User: dto.ToUserResponse(user)}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, *errors.AppError) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// Logout blacklists the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string, expiresAt time.Time) *errors.AppError {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.AddToTokenBlacklist(ctx, token, ttl); err != nil {
		logger.Error("AuthService:Logout:AddToTokenBlacklist:Error:", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to revoke token", err)
	}
	return nil
}

func (s *AuthService) UploadAvatar(ctx context.Context, userID uuid.UUID, contentType string, data []byte) (*dto.AvatarResponse, *errors.AppError) {
	if len(data) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "empty file", nil)
	}
	if contentType != "image/png" && contentType != "image/jpeg" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "avatar must be a PNG or JPEG image", nil)
	}

	key := fmt.Sprintf("avatars/%s-%s", userID, utils.GenerateID())
	url, err := s.storage.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to upload avatar", err)
	}

	if err := s.repo.UpdateAvatarURL(ctx, userID, url); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to save avatar", err)
	}

	return &dto.AvatarResponse{AvatarURL: url}, nil
}
