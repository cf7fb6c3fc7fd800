package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atims0208/fieldhouse/internal/audit"
	"github.com/atims0208/fieldhouse/internal/cache"
	"github.com/atims0208/fieldhouse/internal/domain"
	"github.com/atims0208/fieldhouse/internal/repository"
	"github.com/atims0208/fieldhouse/pkg/jwt"
	"github.com/atims0208/fieldhouse/pkg/log"
	"github.com/atims0208/fieldhouse/pkg/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBanned         = errors.New("account is banned")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidContentType = errors.New("unsupported content type")
	ErrNotOwner           = errors.New("not the owner of this resource")
)

const avatarUploadExpiry = 15 * time.Minute

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo     repository.UserRepository
	tokens   *jwt.Manager
	storage  storage.Storage
	profiles *cache.ProfileCache
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, tokens *jwt.Manager, store storage.Storage, profiles *cache.ProfileCache) UserService {
	return &userServiceImpl{
		repo:     repo,
		tokens:   tokens,
		storage:  store,
		profiles: profiles,
	}
}

// Register registers a new user.
func (s *userServiceImpl) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Email:        strings.ToLower(req.Email),
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hashedPassword),
		Roles:        []string{"user"},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		l.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")
	return s.authResponse(ctx, user)
}

// Login authenticates a user.
func (s *userServiceImpl) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionLoginFailed, "", req.Email, "login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error().Err(err).Msg("failed to get user by email")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, req.Email, "login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	if user.Banned {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, req.Email, "login failed: banned")
		return nil, ErrUserBanned
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return s.authResponse(ctx, user)
}

// RefreshToken exchanges a refresh token for a new token pair.
// The new pair is built from the stored user, not the old claims, so
// role and profile changes take effect at the next refresh.
func (s *userServiceImpl) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, claims.UserID).Msg("failed to load user on refresh")
		return nil, ErrInvalidCredentials
	}
	if user.Banned {
		return nil, ErrUserBanned
	}

	audit.Log(ctx, audit.ActionRefreshToken, user.ID, "tokens refreshed")
	return s.authResponse(ctx, user)
}

// Logout revokes all outstanding tokens for a user.
func (s *userServiceImpl) Logout(ctx context.Context, userID string) error {
	s.tokens.RevokeUserTokens(userID)
	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
	return nil
}

// GetUser returns a user's own profile.
func (s *userServiceImpl) GetUser(ctx context.Context, userID string) (*domain.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	s.populateAvatar(ctx, user, &resp)
	return &resp, nil
}

// GetPublicProfile returns the public view of a user by username.
// Profiles are served read-through from cache; a cache failure only
// falls back to the database.
func (s *userServiceImpl) GetPublicProfile(ctx context.Context, username string) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)

	cached, hit, err := s.profiles.Get(ctx, username)
	if err != nil {
		l.Warn().Err(err).Msg("profile cache read failed")
	}
	if hit {
		return cached, nil
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	resp := user.ToPublicResponse()
	s.populateAvatar(ctx, user, &resp)

	if err := s.profiles.Set(ctx, username, &resp); err != nil {
		l.Warn().Err(err).Msg("profile cache write failed")
	}
	return &resp, nil
}

// UpdateUser updates a user's profile.
func (s *userServiceImpl) UpdateUser(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, user.Username)

	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")
	resp := user.ToResponse()
	s.populateAvatar(ctx, user, &resp)
	return &resp, nil
}

// ChangePassword verifies the current password and sets a new one.
// All outstanding tokens are revoked so other sessions must log in again.
func (s *userServiceImpl) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.tokens.RevokeUserTokens(userID)
	audit.Log(ctx, audit.ActionChangePassword, userID, "password changed")
	return nil
}

// DeleteUser removes a user account.
func (s *userServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidateProfile(ctx, user.Username)
	s.tokens.RevokeUserTokens(userID)
	audit.Log(ctx, audit.ActionDeleteAccount, userID, "account deleted")
	return nil
}

// GenerateAvatarUploadURL generates a presigned PUT URL for direct avatar upload.
func (s *userServiceImpl) GenerateAvatarUploadURL(ctx context.Context, userID, contentType string) (*domain.AvatarPresignResponse, error) {
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return nil, ErrInvalidContentType
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)
	url, err := s.storage.GetUploadURL(ctx, key, contentType, avatarUploadExpiry)
	if err != nil {
		return nil, err
	}

	return &domain.AvatarPresignResponse{
		UploadURL: url,
		Key:       key,
		ExpiresIn: int(avatarUploadExpiry.Seconds()),
	}, nil
}

// ConfirmAvatarUpload records the uploaded object as the user's avatar
// and removes the previous one.
func (s *userServiceImpl) ConfirmAvatarUpload(ctx context.Context, userID, key string) error {
	l := log.Ctx(ctx)

	if !strings.HasPrefix(key, "avatars/"+userID+"/") {
		return ErrNotOwner
	}

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("uploaded object not found")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	oldKey := user.AvatarKey

	if err := s.repo.UpdateAvatar(ctx, userID, key); err != nil {
		return err
	}

	if oldKey != "" && oldKey != key {
		if err := s.storage.Delete(ctx, oldKey); err != nil {
			l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to delete old avatar object")
		}
	}
	s.invalidateProfile(ctx, user.Username)
	return nil
}

// DeleteAvatar removes avatar data for a user.
func (s *userServiceImpl) DeleteAvatar(ctx context.Context, userID string) error {
	l := log.Ctx(ctx)

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarKey == "" {
		return nil
	}

	if err := s.repo.UpdateAvatar(ctx, userID, ""); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, user.AvatarKey); err != nil {
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to delete avatar object")
	}
	s.invalidateProfile(ctx, user.Username)
	return nil
}

func (s *userServiceImpl) invalidateProfile(ctx context.Context, username string) {
	if err := s.profiles.Invalidate(ctx, username); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("profile cache invalidation failed")
	}
}

func (s *userServiceImpl) authResponse(ctx context.Context, user *domain.User) (*domain.AuthResponse, error) {
	l := log.Ctx(ctx)

	accessToken, refreshToken, accessExp, _, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Username, user.Roles)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to generate tokens")
		return nil, err
	}

	resp := user.ToResponse()
	s.populateAvatar(ctx, user, &resp)
	return &domain.AuthResponse{
		User:         resp,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
	}, nil
}

// populateAvatar resolves the stored avatar key to a fetchable URL.
// A resolution failure only drops the URL from the response.
func (s *userServiceImpl) populateAvatar(ctx context.Context, user *domain.User, resp *domain.UserResponse) {
	if user.AvatarKey == "" {
		return
	}
	url, err := s.storage.GetURL(ctx, user.AvatarKey, time.Hour)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to resolve avatar url")
		return
	}
	resp.AvatarURL = url
}

var _ UserService = (*userServiceImpl)(nil)
