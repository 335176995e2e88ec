package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"skinTrack/domain"
	"skinTrack/pkg/logger"
	"skinTrack/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) error
}

// TokenRepository keeps issued tokens so they can be revoked before expiry.
type TokenRepository interface {
	StoreToken(ctx context.Context, userID, token string, data domain.TokenData, ttl time.Duration) error
	ValidateToken(ctx context.Context, token string) (string, error)
	RevokeToken(ctx context.Context, userID, token string) error
}

type userService struct {
	userRepo  UserRepository
	tokenRepo TokenRepository
	validate  *validator.Validate
}

func NewUserService(userRepo UserRepository, tokenRepo TokenRepository, validate *validator.Validate) *userService {
	return &userService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		validate:  validate,
	}
}

func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, fmt.Errorf("context error: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, domain.InvalidInput("invalid email format")
	}

	if err := s.validate.Var(user.Password, "required,min=8"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, domain.InvalidInput("password must be at least 8 characters")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing.ID > 0 {
		logger.Warn("Email already exists", "email", email)
		return domain.User{}, domain.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		logger.Error("Failed to look up email", err)
		return domain.User{}, err
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		DisplayName: strings.TrimSpace(user.DisplayName),
		Email:       email,
		Password:    passwordHash,
		Role:        domain.RoleMember,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	logger.Info("user registered", "user_id", newUser.ID)
	newUser.Password = ""
	return newUser, nil
}

func (s *userService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.User{}, fmt.Errorf("context error: %w", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.User{}, domain.ErrInvalidCredentials
		}
		logger.Error("Failed to look up user", err)
		return "", domain.User{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		logger.Warn("User password incorrect", "user_id", user.ID)
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	userIDStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := utils.GenerateJWT(userIDStr, user.Role)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return "", domain.User{}, errors.New("failed to generate token")
	}

	now := time.Now()
	ttl := utils.TokenTTL()
	data := domain.TokenData{
		UserID:    userIDStr,
		Role:      user.Role,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := s.tokenRepo.StoreToken(ctx, userIDStr, token, data, ttl); err != nil {
		logger.Error("Failed to store token", err)
		return "", domain.User{}, errors.New("failed to store token")
	}

	user.Password = ""
	return token, user, nil
}

// ValidateTokenFromRedis returns the user id the token was issued to.
func (s *userService) ValidateTokenFromRedis(ctx context.Context, token string) (string, error) {
	return s.tokenRepo.ValidateToken(ctx, token)
}

func (s *userService) Logout(ctx context.Context, userID uint, token string) error {
	if err := s.tokenRepo.RevokeToken(ctx, strconv.FormatUint(uint64(userID), 10), token); err != nil {
		logger.Error("Failed to revoke token", err)
		return err
	}
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

// UpdateUser changes the display name and, when given, the password.
func (s *userService) UpdateUser(ctx context.Context, id uint, updateData *domain.User) (domain.User, error) {
	existingUser, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for update", err)
		return domain.User{}, err
	}

	if name := strings.TrimSpace(updateData.DisplayName); name != "" {
		existingUser.DisplayName = name
	}

	if updateData.Password != "" {
		if err := s.validate.Var(updateData.Password, "min=8"); err != nil {
			logger.Error("Invalid password", err)
			return domain.User{}, domain.InvalidInput("password must be at least 8 characters")
		}

		passwordHash, err := utils.HashPassword(updateData.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return domain.User{}, errors.New("failed to hash password")
		}
		existingUser.Password = passwordHash
	}

	if err := s.userRepo.Update(ctx, &existingUser); err != nil {
		logger.Error("Failed to update user", err)
		return domain.User{}, err
	}

	existingUser.Password = ""
	return existingUser, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		logger.Error("User not found for deletion", err)
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete user", err)
		return err
	}

	return nil
}
