package repository

import (
	"context"
	"fmt"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository/dao"
)

var ErrAlumnusNotFound = dao.ErrAlumnusNotFound

type AlumniDAO interface {
	FindByRegID(ctx context.Context, regID int) (dao.Alumnus, error)
}

type AlumniRepository struct {
	dao AlumniDAO
}

func NewAlumniRepository(dao AlumniDAO) *AlumniRepository {
	return &AlumniRepository{
		dao: dao,
	}
}

func (r *AlumniRepository) FindByRegID(ctx context.Context, regID int) (domain.Alumnus, error) {
	found, err := r.dao.FindByRegID(ctx, regID)
	if err != nil {
		return domain.Alumnus{}, fmt.Errorf("r.dao.FindByRegID -> %w", err)
	}

	return domain.Alumnus{
		ID:    found.ID,
		RegID: found.RegID,
		Name:  found.Name,
	}, nil
}
