package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository"
)

var (
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrNotAdmin             = errors.New("only admins may approve payments")
)

type RegistrationStore interface {
	FindByIdentityID(ctx context.Context, identityID uint) (domain.RegistrationRecord, error)
	SetPaymentApproval(ctx context.Context, id uint, approved bool) error
}

// RegistrationService serves the read and back-office side of persisted
// registrations.
type RegistrationService struct {
	repo RegistrationStore
}

func NewRegistrationService(repo RegistrationStore) *RegistrationService {
	return &RegistrationService{
		repo: repo,
	}
}

// GetByIdentity returns the registration owned by a logged-in identity.
func (s *RegistrationService) GetByIdentity(ctx context.Context, identityID uint) (domain.RegistrationRecord, error) {
	rec, err := s.repo.FindByIdentityID(ctx, identityID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return domain.RegistrationRecord{}, ErrRegistrationNotFound
		}

		return domain.RegistrationRecord{}, fmt.Errorf("s.repo.FindByIdentityID -> %w", err)
	}

	return rec, nil
}

// ApprovePayment records the admin's reconciliation decision on a
// user-attested payment.
func (s *RegistrationService) ApprovePayment(ctx context.Context, recordID uint, approved bool, actor domain.Identity) error {
	if actor.Role != "admin" {
		return ErrNotAdmin
	}

	if err := s.repo.SetPaymentApproval(ctx, recordID, approved); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}

		return fmt.Errorf("s.repo.SetPaymentApproval -> %w", err)
	}

	zap.L().Info("payment approval updated",
		zap.Uint("record_id", recordID),
		zap.Bool("approved", approved),
		zap.Uint("admin_id", actor.ID),
	)

	return nil
}
