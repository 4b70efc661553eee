package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository"
)

type AlumniRepository interface {
	FindByRegID(ctx context.Context, regID int) (domain.Alumnus, error)
}

type RegistrationReader interface {
	FindByRegID(ctx context.Context, regID int) (domain.RegistrationRecord, error)
}

// LookupService answers the two pre-registration questions: does this
// identifier belong to a known alumnus, and has it already submitted a
// reunion registration.
type LookupService struct {
	alumni AlumniRepository
	regs   RegistrationReader
}

func NewLookupService(alumni AlumniRepository, regs RegistrationReader) *LookupService {
	return &LookupService{
		alumni: alumni,
		regs:   regs,
	}
}

// FindByIdentifier reports whether the identifier exists in the alumni
// registry and, if so, the holder's display name.
func (s *LookupService) FindByIdentifier(ctx context.Context, id int) (bool, string, error) {
	alumnus, err := s.alumni.FindByRegID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAlumnusNotFound) {
			return false, "", nil
		}

		return false, "", fmt.Errorf("s.alumni.FindByRegID -> %w", err)
	}

	return true, alumnus.Name, nil
}

// HasRegistration reports whether the identifier already has a
// submitted registration.
func (s *LookupService) HasRegistration(ctx context.Context, id int) (bool, error) {
	_, err := s.regs.FindByRegID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("s.regs.FindByRegID -> %w", err)
	}

	return true, nil
}
