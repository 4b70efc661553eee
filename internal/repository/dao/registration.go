package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrRegistrationNotFound = errors.New("registration not found")

type Registration struct {
	ID uint `gorm:"primaryKey"`

	RegID        int    `gorm:"index;not null"`
	Name         string `gorm:"not null"`
	Gender       string
	PasswordHash string
	PhotoURL     string

	Attendance        string `gorm:"not null"`
	ComingWithAnyone  bool
	CompanionCount    int
	CompanionRelation string

	Mobile                string `gorm:"not null"`
	MobileHasMessaging    bool
	SecondaryNumber       string
	SecondaryHasMessaging bool
	Email                 string `gorm:"index;not null"`

	AdmitYear          int
	AdmitGrade         int
	PassoutYear        int
	PassoutGrade       int
	CurrentInstitution string
	CurrentDegree      string
	FieldOfStudy       string
	CurrentlyStudying  bool
	GradYear           int
	NeedsScholarship   bool

	FatherName       string
	MotherName       string
	PresentAddress   string
	PermanentAddress string

	IsWorking bool
	Company   string
	Position  string

	RegistrationFee   int
	WelcomeGift       bool
	Jacket            bool
	JacketSize        string
	SpecialGiftHamper bool
	Donation          int
	Payable           int
	Paid              bool
	PaymentApproved   bool
	PaymentReference  string

	IdentityID uint `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

func (d *RegistrationDAO) Insert(ctx context.Context, reg Registration) (Registration, error) {
	result := d.db.WithContext(ctx).Create(&reg)
	if result.Error != nil {
		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByEmail(ctx context.Context, email string) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByRegID(ctx context.Context, regID int) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "reg_id = ?", regID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) FindByIdentityID(ctx context.Context, identityID uint) (Registration, error) {
	var reg Registration

	result := d.db.WithContext(ctx).First(&reg, "identity_id = ?", identityID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return reg, nil
}

func (d *RegistrationDAO) UpdatePaymentApproval(ctx context.Context, id uint, approved bool) error {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ?", id).
		Update("payment_approved", approved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}
