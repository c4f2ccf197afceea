package service

import (
	"context"

	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/telemetry"
)

// UserService handles the admin-facing account operations. Account
// creation lives in AuthService.Register.
type UserService struct {
	userRepo UserRepositoryInterface
}

func NewUserService(userRepo UserRepositoryInterface) *UserService {
	return &UserService{userRepo: userRepo}
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

// SetActive activates or deactivates an account. Deactivated users keep
// their history but can no longer log in; existing tokens are rejected
// at their next login, not revoked.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) error {
	ctx, span := telemetry.StartSpan(ctx, "UserService.SetActive", telemetry.SpanAttributes{
		UserID:    id,
		Operation: "set_user_status",
	})
	defer span.End()

	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}
