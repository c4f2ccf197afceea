package service

import (
	"context"
	"testing"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of UserRepositoryInterface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementQueryCount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister_CreatesActiveUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, "secret")
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "pilot@example.com").Return(nil, domain.ErrUserNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Register(ctx, RegisterInput{
		Name:     "Test Pilot",
		Email:    "pilot@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.UserRolePilot, user.Role)
	assert.True(t, user.Active)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
	repo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, "secret")
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "pilot@example.com").Return(&domain.User{ID: "u1"}, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Name:     "Test Pilot",
		Email:    "pilot@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, "secret")
	ctx := context.Background()

	user := &domain.User{
		ID:           "u1",
		Name:         "Test Pilot",
		Email:        "pilot@example.com",
		PasswordHash: hashPassword(t, "hunter22"),
		Role:         domain.UserRolePilot,
		Active:       true,
	}
	repo.On("GetByEmail", ctx, "pilot@example.com").Return(user, nil)
	repo.On("UpdateLastLogin", ctx, "u1").Return(nil)

	result, err := svc.Login(ctx, "pilot@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "u1", result.User.ID)

	claims, err := svc.VerifyToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "pilot@example.com", claims.Email)
	assert.Equal(t, domain.UserRolePilot, claims.Role)
	repo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, "secret")
	ctx := context.Background()

	user := &domain.User{
		ID:           "u1",
		Email:        "pilot@example.com",
		PasswordHash: hashPassword(t, "hunter22"),
		Active:       true,
	}
	repo.On("GetByEmail", ctx, "pilot@example.com").Return(user, nil)

	_, err := svc.Login(ctx, "pilot@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, "secret")
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrUserNotFound)

	_, err := svc.Login(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_DeactivatedUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, "secret")
	ctx := context.Background()

	user := &domain.User{
		ID:           "u1",
		Email:        "pilot@example.com",
		PasswordHash: hashPassword(t, "hunter22"),
		Active:       false,
	}
	repo.On("GetByEmail", ctx, "pilot@example.com").Return(user, nil)

	_, err := svc.Login(ctx, "pilot@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrUserInactive)
	repo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), "secret")

	_, err := svc.VerifyToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	repo := new(MockUserRepository)
	issuer := NewAuthService(repo, "secret-a")
	verifier := NewAuthService(repo, "secret-b")
	ctx := context.Background()

	user := &domain.User{
		ID:           "u1",
		Email:        "pilot@example.com",
		PasswordHash: hashPassword(t, "hunter22"),
		Active:       true,
	}
	repo.On("GetByEmail", ctx, "pilot@example.com").Return(user, nil)
	repo.On("UpdateLastLogin", ctx, "u1").Return(nil)

	result, err := issuer.Login(ctx, "pilot@example.com", "hunter22")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
