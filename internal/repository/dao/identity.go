package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrIdentityEmailExists = errors.New("identity email already in use")
	ErrIdentityNotFound    = errors.New("identity not found")
)

type Identity struct {
	ID uint `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`

	Name string `gorm:"not null"`
	Role string `gorm:"not null"` // "alumni" or "admin"

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type IdentityDAO struct {
	db *gorm.DB
}

func NewIdentityDAO(db *gorm.DB) *IdentityDAO {
	return &IdentityDAO{
		db: db,
	}
}

func (d *IdentityDAO) Insert(ctx context.Context, identity Identity) (Identity, error) {
	result := d.db.WithContext(ctx).Create(&identity)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_identities_email"`) {
			return Identity{}, ErrIdentityEmailExists
		}

		return Identity{}, result.Error
	}

	return identity, nil
}

func (d *IdentityDAO) FindByID(ctx context.Context, id uint) (Identity, error) {
	var identity Identity

	result := d.db.WithContext(ctx).First(&identity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Identity{}, ErrIdentityNotFound
		}

		return Identity{}, result.Error
	}

	return identity, nil
}

func (d *IdentityDAO) FindByEmail(ctx context.Context, email string) (Identity, error) {
	var identity Identity

	result := d.db.WithContext(ctx).First(&identity, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Identity{}, ErrIdentityNotFound
		}

		return Identity{}, result.Error
	}

	return identity, nil
}
