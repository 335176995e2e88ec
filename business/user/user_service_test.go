package user

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"skinTrack/domain"
	"skinTrack/pkg/utils"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 7
	}
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) StoreToken(ctx context.Context, userID, token string, data domain.TokenData, ttl time.Duration) error {
	return m.Called(ctx, userID, token, data, ttl).Error(0)
}

func (m *mockTokenRepo) ValidateToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockTokenRepo) RevokeToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func newService() (*userService, *mockUserRepo, *mockTokenRepo) {
	utils.InitJWT("user-test-secret", time.Hour)
	users, tokens := &mockUserRepo{}, &mockTokenRepo{}
	return NewUserService(users, tokens, validator.New()), users, tokens
}

func TestRegister(t *testing.T) {
	svc, users, _ := newService()
	ctx := context.Background()

	users.On("FindByEmail", ctx, "ana@example.com").Return(domain.User{}, domain.ErrUserNotFound)
	users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "ana@example.com" && u.Role == domain.RoleMember && utils.CheckPassword("password1", u.Password)
	})).Return(nil)

	got, err := svc.Register(ctx, &domain.User{DisplayName: " Ana ", Email: "Ana@Example.com", Password: "password1"})

	require.NoError(t, err)
	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, "Ana", got.DisplayName)
	assert.Empty(t, got.Password)
	users.AssertExpectations(t)
}

func TestRegister_Rejects(t *testing.T) {
	svc, users, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &domain.User{Email: "nope", Password: "password1"})
	assert.EqualError(t, err, "invalid email format")

	_, err = svc.Register(ctx, &domain.User{Email: "a@b.co", Password: "short"})
	assert.EqualError(t, err, "password must be at least 8 characters")

	users.On("FindByEmail", ctx, "taken@b.co").Return(domain.User{ID: 3}, nil)
	_, err = svc.Register(ctx, &domain.User{Email: "taken@b.co", Password: "password1"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	svc, users, tokens := newService()
	ctx := context.Background()
	hash, err := utils.HashPassword("password1")
	require.NoError(t, err)

	users.On("FindByEmail", ctx, "ana@example.com").Return(domain.User{ID: 7, Email: "ana@example.com", Password: hash, Role: domain.RoleMember}, nil)
	tokens.On("StoreToken", ctx, "7", mock.AnythingOfType("string"), mock.MatchedBy(func(d domain.TokenData) bool {
		return d.UserID == "7" && d.IPAddress == "10.0.0.1" && d.ExpiresAt.After(d.IssuedAt)
	}), time.Hour).Return(nil)

	token, user, err := svc.Login(ctx, "ana@example.com", "password1", "10.0.0.1", "test-agent")

	require.NoError(t, err)
	assert.Empty(t, user.Password)
	claims, err := utils.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	tokens.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, users, tokens := newService()
	ctx := context.Background()
	hash, err := utils.HashPassword("password1")
	require.NoError(t, err)

	users.On("FindByEmail", ctx, "ana@example.com").Return(domain.User{ID: 7, Password: hash}, nil)
	users.On("FindByEmail", ctx, "ghost@example.com").Return(domain.User{}, domain.ErrUserNotFound)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong-pass", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "ghost@example.com", "password1", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	tokens.AssertNotCalled(t, "StoreToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser(t *testing.T) {
	svc, users, _ := newService()
	ctx := context.Background()

	users.On("FindByID", ctx, uint(7)).Return(domain.User{ID: 7, DisplayName: "Ana", Password: "old"}, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.DisplayName == "Ana B" && utils.CheckPassword("new-password", u.Password)
	})).Return(nil)

	got, err := svc.UpdateUser(ctx, 7, &domain.User{DisplayName: "Ana B", Password: "new-password"})

	require.NoError(t, err)
	assert.Equal(t, "Ana B", got.DisplayName)
	assert.Empty(t, got.Password)
}

func TestLogout(t *testing.T) {
	svc, _, tokens := newService()
	ctx := context.Background()
	tokens.On("RevokeToken", ctx, "7", "tok").Return(nil)

	require.NoError(t, svc.Logout(ctx, 7, "tok"))
	tokens.AssertExpectations(t)
}
