package repository

import (
	"context"
	"fmt"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository/dao"
)

var (
	ErrIdentityEmailExists = dao.ErrIdentityEmailExists
	ErrIdentityNotFound    = dao.ErrIdentityNotFound
)

type IdentityDAO interface {
	Insert(ctx context.Context, identity dao.Identity) (dao.Identity, error)
	FindByID(ctx context.Context, id uint) (dao.Identity, error)
	FindByEmail(ctx context.Context, email string) (dao.Identity, error)
}

type IdentityRepository struct {
	dao IdentityDAO
}

func NewIdentityRepository(dao IdentityDAO) *IdentityRepository {
	return &IdentityRepository{
		dao: dao,
	}
}

func (r *IdentityRepository) Create(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	created, err := r.dao.Insert(ctx, dao.Identity{
		Email:    identity.Email,
		Password: identity.Password,
		Name:     identity.Name,
		Role:     identity.Role,
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id uint) (domain.Identity, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *IdentityRepository) daoToDomain(i dao.Identity) domain.Identity {
	return domain.Identity{
		ID:        i.ID,
		Email:     i.Email,
		Password:  i.Password,
		Name:      i.Name,
		Role:      i.Role,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
