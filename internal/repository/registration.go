package repository

import (
	"context"
	"fmt"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository/dao"
)

var ErrRegistrationNotFound = dao.ErrRegistrationNotFound

type RegistrationDAO interface {
	Insert(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	FindByEmail(ctx context.Context, email string) (dao.Registration, error)
	FindByRegID(ctx context.Context, regID int) (dao.Registration, error)
	FindByIdentityID(ctx context.Context, identityID uint) (dao.Registration, error)
	UpdatePaymentApproval(ctx context.Context, id uint, approved bool) error
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, rec domain.RegistrationRecord) (domain.RegistrationRecord, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(rec))
	if err != nil {
		return domain.RegistrationRecord{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) FindByEmail(ctx context.Context, email string) (domain.RegistrationRecord, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.RegistrationRecord{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByRegID(ctx context.Context, regID int) (domain.RegistrationRecord, error) {
	found, err := r.dao.FindByRegID(ctx, regID)
	if err != nil {
		return domain.RegistrationRecord{}, fmt.Errorf("r.dao.FindByRegID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) FindByIdentityID(ctx context.Context, identityID uint) (domain.RegistrationRecord, error) {
	found, err := r.dao.FindByIdentityID(ctx, identityID)
	if err != nil {
		return domain.RegistrationRecord{}, fmt.Errorf("r.dao.FindByIdentityID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RegistrationRepository) SetPaymentApproval(ctx context.Context, id uint, approved bool) error {
	if err := r.dao.UpdatePaymentApproval(ctx, id, approved); err != nil {
		return fmt.Errorf("r.dao.UpdatePaymentApproval -> %w", err)
	}

	return nil
}

func (r *RegistrationRepository) domainToDAO(rec domain.RegistrationRecord) dao.Registration {
	return dao.Registration{
		ID:           rec.ID,
		RegID:        rec.Identifier,
		Name:         rec.Name,
		Gender:       rec.Gender,
		PasswordHash: rec.PasswordHash,
		PhotoURL:     rec.PhotoURL,

		Attendance:        string(rec.Attendance),
		ComingWithAnyone:  rec.ComingWithAnyone,
		CompanionCount:    rec.CompanionCount,
		CompanionRelation: rec.CompanionRelation,

		Mobile:                rec.Mobile,
		MobileHasMessaging:    rec.MobileHasMessaging,
		SecondaryNumber:       rec.SecondaryNumber,
		SecondaryHasMessaging: rec.SecondaryHasMessaging,
		Email:                 rec.Email,

		AdmitYear:          rec.AdmitYear,
		AdmitGrade:         rec.AdmitGrade,
		PassoutYear:        rec.PassoutYear,
		PassoutGrade:       rec.PassoutGrade,
		CurrentInstitution: rec.CurrentInstitution,
		CurrentDegree:      rec.CurrentDegree,
		FieldOfStudy:       rec.FieldOfStudy,
		CurrentlyStudying:  rec.CurrentlyStudying,
		GradYear:           rec.GradYear,
		NeedsScholarship:   rec.NeedsScholarship,

		FatherName:       rec.FatherName,
		MotherName:       rec.MotherName,
		PresentAddress:   rec.PresentAddress,
		PermanentAddress: rec.PermanentAddress,

		IsWorking: rec.IsWorking,
		Company:   rec.Company,
		Position:  rec.Position,

		RegistrationFee:   rec.RegistrationFee,
		WelcomeGift:       rec.WelcomeGift,
		Jacket:            rec.Jacket,
		JacketSize:        rec.JacketSize,
		SpecialGiftHamper: rec.SpecialGiftHamper,
		Donation:          rec.Donation,
		Payable:           rec.Payable,
		Paid:              rec.Paid,
		PaymentApproved:   rec.PaymentApproved,
		PaymentReference:  rec.PaymentReference,

		IdentityID: rec.IdentityID,
	}
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.RegistrationRecord {
	return domain.RegistrationRecord{
		ID:           reg.ID,
		Identifier:   reg.RegID,
		Name:         reg.Name,
		Gender:       reg.Gender,
		PasswordHash: reg.PasswordHash,
		PhotoURL:     reg.PhotoURL,

		Attendance:        domain.Attendance(reg.Attendance),
		ComingWithAnyone:  reg.ComingWithAnyone,
		CompanionCount:    reg.CompanionCount,
		CompanionRelation: reg.CompanionRelation,

		Mobile:                reg.Mobile,
		MobileHasMessaging:    reg.MobileHasMessaging,
		SecondaryNumber:       reg.SecondaryNumber,
		SecondaryHasMessaging: reg.SecondaryHasMessaging,
		Email:                 reg.Email,

		AdmitYear:          reg.AdmitYear,
		AdmitGrade:         reg.AdmitGrade,
		PassoutYear:        reg.PassoutYear,
		PassoutGrade:       reg.PassoutGrade,
		CurrentInstitution: reg.CurrentInstitution,
		CurrentDegree:      reg.CurrentDegree,
		FieldOfStudy:       reg.FieldOfStudy,
		CurrentlyStudying:  reg.CurrentlyStudying,
		GradYear:           reg.GradYear,
		NeedsScholarship:   reg.NeedsScholarship,

		FatherName:       reg.FatherName,
		MotherName:       reg.MotherName,
		PresentAddress:   reg.PresentAddress,
		PermanentAddress: reg.PermanentAddress,

		IsWorking: reg.IsWorking,
		Company:   reg.Company,
		Position:  reg.Position,

		RegistrationFee:   reg.RegistrationFee,
		WelcomeGift:       reg.WelcomeGift,
		Jacket:            reg.Jacket,
		JacketSize:        reg.JacketSize,
		SpecialGiftHamper: reg.SpecialGiftHamper,
		Donation:          reg.Donation,
		Payable:           reg.Payable,
		Paid:              reg.Paid,
		PaymentApproved:   reg.PaymentApproved,
		PaymentReference:  reg.PaymentReference,

		IdentityID: reg.IdentityID,

		CreatedAt: reg.CreatedAt,
		UpdatedAt: reg.UpdatedAt,
	}
}
