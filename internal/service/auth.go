package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository"
)

var (
	ErrEmailInUse       = repository.ErrIdentityEmailExists
	ErrIdentityNotFound = repository.ErrIdentityNotFound
	ErrWrongPassword    = errors.New("wrong password")
)

type IdentityRepository interface {
	Create(ctx context.Context, identity domain.Identity) (domain.Identity, error)
	FindByID(ctx context.Context, id uint) (domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (domain.Identity, error)
}

// AuthService provisions and authenticates identities. The submission
// pipeline uses it as its identity provider.
type AuthService struct {
	repo IdentityRepository
}

func NewAuthService(repo IdentityRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

// CreateIdentity provisions an authentication identity for a new
// registrant. An email provisioned elsewhere fails with ErrEmailInUse.
func (s *AuthService) CreateIdentity(ctx context.Context, email, password, name string) (domain.Identity, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return domain.Identity{}, err
	}

	created, err := s.repo.Create(ctx, domain.Identity{
		Email:    email,
		Password: hash,
		Name:     name,
		Role:     "alumni",
	})
	if err != nil {
		if errors.Is(err, repository.ErrIdentityEmailExists) {
			return domain.Identity{}, ErrEmailInUse
		}

		return domain.Identity{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return domain.Identity{}, ErrIdentityNotFound
		}

		return domain.Identity{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(identity.Password), []byte(password)); err != nil {
		return domain.Identity{}, ErrWrongPassword
	}

	return identity, nil
}

func (s *AuthService) GetIdentity(ctx context.Context, id uint) (domain.Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return identity, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
