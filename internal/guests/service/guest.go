package service

import (
	"context"
	"errors"

	guestserrors "hotelops/internal/guests/errors"
	"hotelops/internal/guests/repository"
	apperrors "hotelops/pkg/errors"
	"hotelops/pkg/logger"
	"hotelops/pkg/model"
	"hotelops/pkg/sanitizer"
)

// GuestService resolves the acting identity forwarded by the gateway.
type GuestService interface {
	GetByEmail(ctx context.Context, email string) (*model.Guest, error)
}

type guestService struct {
	repo repository.GuestRepository
	log  *logger.Logger
}

func NewGuestService(repo repository.GuestRepository, log *logger.Logger) GuestService {
	return &guestService{repo: repo, log: log}
}

func (s *guestService) GetByEmail(ctx context.Context, email string) (*model.Guest, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.InvalidInput("Guest email cannot be empty")
	}

	guest, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, guestserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Guest", email)
		}
		s.log.Error("Failed to retrieve guest", "email", email, "error", err)
		return nil, apperrors.Internal("Failed to retrieve guest", err)
	}
	return guest, nil
}
