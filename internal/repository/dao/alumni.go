package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrAlumnusNotFound = errors.New("alumnus not found")

// Alumnus is the registry imported from the association's back office.
type Alumnus struct {
	ID uint `gorm:"primaryKey"`

	RegID int    `gorm:"uniqueIndex;not null"`
	Name  string `gorm:"not null"`
}

type AlumniDAO struct {
	db *gorm.DB
}

func NewAlumniDAO(db *gorm.DB) *AlumniDAO {
	return &AlumniDAO{
		db: db,
	}
}

func (d *AlumniDAO) FindByRegID(ctx context.Context, regID int) (Alumnus, error) {
	var alumnus Alumnus

	result := d.db.WithContext(ctx).First(&alumnus, "reg_id = ?", regID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Alumnus{}, ErrAlumnusNotFound
		}

		return Alumnus{}, result.Error
	}

	return alumnus, nil
}
