package domain

import (
	"strconv"
	"strings"
	"time"
)

// RegistrationRecord is the finalized, persisted registration. Year,
// grade and identifier fields are numeric here even though the draft
// collects them as text.
type RegistrationRecord struct {
	ID uint `json:"id"`

	Identifier int    `json:"identifier"`
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	// PasswordHash is a one-way hashed copy kept for legacy display
	// only. Authentication relies solely on the provisioned identity.
	PasswordHash string `json:"-"`
	PhotoURL     string `json:"photo_url"`

	Attendance        Attendance `json:"attendance"`
	ComingWithAnyone  bool       `json:"coming_with_anyone"`
	CompanionCount    int        `json:"companion_count"`
	CompanionRelation string     `json:"companion_relation"`

	Mobile                string `json:"mobile"`
	MobileHasMessaging    bool   `json:"mobile_has_messaging"`
	SecondaryNumber       string `json:"secondary_number"`
	SecondaryHasMessaging bool   `json:"secondary_has_messaging"`
	Email                 string `json:"email"`

	AdmitYear          int    `json:"admit_year"`
	AdmitGrade         int    `json:"admit_grade"`
	PassoutYear        int    `json:"passout_year"`
	PassoutGrade       int    `json:"passout_grade"`
	CurrentInstitution string `json:"current_institution"`
	CurrentDegree      string `json:"current_degree"`
	FieldOfStudy       string `json:"field_of_study"`
	CurrentlyStudying  bool   `json:"currently_studying"`
	GradYear           int    `json:"grad_year"`
	NeedsScholarship   bool   `json:"needs_scholarship"`

	FatherName       string `json:"father_name"`
	MotherName       string `json:"mother_name"`
	PresentAddress   string `json:"present_address"`
	PermanentAddress string `json:"permanent_address"`

	IsWorking bool   `json:"is_working"`
	Company   string `json:"company"`
	Position  string `json:"position"`

	RegistrationFee   int    `json:"registration_fee"`
	WelcomeGift       bool   `json:"welcome_gift"`
	Jacket            bool   `json:"jacket"`
	JacketSize        string `json:"jacket_size"`
	SpecialGiftHamper bool   `json:"special_gift_hamper"`
	Donation          int    `json:"donation"`
	Payable           int    `json:"payable"`
	Paid              bool   `json:"paid"`
	PaymentApproved   bool   `json:"payment_approved"`
	PaymentReference  string `json:"payment_reference"`

	IdentityID uint `json:"identity_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finalize coerces the draft into an immutable record. passwordHash and
// photoURL come from the submission pipeline; identityID is the
// back-reference to the provisioned identity.
func (d *RegistrationDraft) Finalize(passwordHash, photoURL string, identityID uint) RegistrationRecord {
	rec := RegistrationRecord{
		Identifier:   d.Identifier,
		Name:         d.DisplayName,
		Gender:       d.Gender,
		PasswordHash: passwordHash,
		PhotoURL:     photoURL,

		Attendance:        d.Attendance,
		CompanionCount:    d.Accompanying.Count,
		CompanionRelation: d.Accompanying.Relationship,

		Mobile:                d.Contact.Mobile,
		MobileHasMessaging:    d.Contact.MobileHasMessaging,
		SecondaryNumber:       d.Contact.SecondaryNumber,
		SecondaryHasMessaging: d.Contact.SecondaryHasMessaging,
		Email:                 d.Contact.Email,

		AdmitYear:          coerceInt(d.Academic.AdmitYear),
		AdmitGrade:         coerceInt(d.Academic.AdmitGrade),
		PassoutYear:        coerceInt(d.Academic.PassoutYear),
		PassoutGrade:       coerceInt(d.Academic.PassoutGrade),
		CurrentInstitution: d.Academic.CurrentInstitution,
		CurrentDegree:      d.Academic.CurrentDegree,
		FieldOfStudy:       d.Academic.FieldOfStudy,
		CurrentlyStudying:  d.Academic.CurrentlyStudying,
		GradYear:           coerceInt(d.Academic.GradYear),

		FatherName:       d.Family.FatherName,
		MotherName:       d.Family.MotherName,
		PresentAddress:   d.Address.Present,
		PermanentAddress: d.Address.Permanent,

		IsWorking: d.Profession.IsWorking,
		Company:   d.Profession.Company,
		Position:  d.Profession.Position,

		RegistrationFee:   d.Event.RegistrationFee,
		WelcomeGift:       d.Event.Perks.WelcomeGift,
		Jacket:            d.Event.Perks.Jacket,
		JacketSize:        string(d.Event.Perks.JacketSize),
		SpecialGiftHamper: d.Event.Perks.SpecialGiftHamper,
		Donation:          d.Event.Donation,
		Payable:           d.Event.Payable,
		Paid:              d.Event.Paid,
		PaymentApproved:   d.Event.PaymentApproved,
		PaymentReference:  d.Event.PaymentReference,

		IdentityID: identityID,
	}

	if d.Accompanying.ComingWithAnyone != nil {
		rec.ComingWithAnyone = *d.Accompanying.ComingWithAnyone
	}
	if d.Academic.NeedsScholarship != nil {
		rec.NeedsScholarship = *d.Academic.NeedsScholarship
	}

	return rec
}

// coerceInt applies best-effort numeric coercion to a form field.
func coerceInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return n
}

// Alumnus is a row of the alumni registry consumed by the lookup
// service before a person registers.
type Alumnus struct {
	ID    uint   `json:"id"`
	RegID int    `json:"reg_id"`
	Name  string `json:"name"`
}

// Identity is a provisioned authentication identity.
type Identity struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
