package service

import (
	"context"
	"errors"
	"time"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/telemetry"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is how long an issued token stays valid.
const tokenTTL = 24 * time.Hour

// UserRepositoryInterface defines the repository interface for user persistence
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	IncrementQueryCount(ctx context.Context, id string) error
}

// TokenClaims is the identity carried inside an issued token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   domain.UserRole
}

// AuthService issues and verifies bearer tokens and manages accounts.
type AuthService struct {
	userRepo  UserRepositoryInterface
	jwtSecret []byte
	uuidGen   UUIDGenerator
	now       func() time.Time
}

func NewAuthService(userRepo UserRepositoryInterface, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		uuidGen:   &DefaultUUIDGenerator{},
		now:       time.Now,
	}
}

// LoginResult carries a freshly minted token and the authenticated user.
type LoginResult struct {
	Token string
	User  *domain.User
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords produce the same error so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Login", telemetry.SpanAttributes{Operation: "login"})
	defer span.End()

	if email == "" || password == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		span.SetError(err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		span.SetError(err)
		return nil, err
	}

	token, err := s.mintToken(user)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to sign token", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// RegisterInput is the input for creating a user account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
	License  string
}

// Register creates a user account. Only administrators may call this;
// the role gate lives in the router.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.Register", telemetry.SpanAttributes{Operation: "register"})
	defer span.End()

	if input.Password == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "password is required")
	}
	if input.Role == "" {
		input.Role = domain.UserRolePilot
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		span.SetError(err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to hash password", err)
	}

	user := &domain.User{
		ID:           s.uuidGen.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		License:      input.License,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	}

	if err := domain.ValidateUser(user); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid user", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		span.SetError(err)
		return nil, err
	}

	return user, nil
}

// VerifyToken parses and validates a bearer token and returns the
// identity it encodes.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	userID, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return nil, domain.ErrInvalidCredentials
	}

	return &TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   domain.UserRole(role),
	}, nil
}

func (s *AuthService) mintToken(user *domain.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}
