package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Wizard update requests stay deliberately permissive: the step guards
// own the required-field rules, and a draft must be storable while
// incomplete. Validation here only rejects values that could never be
// valid.

type PersonalInfoRequest struct {
	Identifier            int    `json:"identifier"`
	DisplayName           string `json:"display_name"`
	Gender                string `json:"gender"`
	Attendance            string `json:"attendance"`
	ComingWithAnyone      *bool  `json:"coming_with_anyone,omitempty"`
	CompanionCount        int    `json:"companion_count"`
	CompanionRelationship string `json:"companion_relationship"`
}

func (req *PersonalInfoRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Identifier, validation.Min(0)),
		validation.Field(&req.Attendance, validation.In("", "yes", "no", "maybe")),
		validation.Field(&req.CompanionCount, validation.Min(0), validation.Max(4)),
	)
}

type ContactInfoRequest struct {
	Mobile                string `json:"mobile"`
	MobileHasMessaging    bool   `json:"mobile_has_messaging"`
	SecondaryNumber       string `json:"secondary_number"`
	SecondaryHasMessaging bool   `json:"secondary_has_messaging"`
	Email                 string `json:"email"`
	Password              string `json:"password"`
	// CopySecondaryFromMobile is the explicit "same as primary" action.
	CopySecondaryFromMobile bool `json:"copy_secondary_from_mobile"`
}

func (req *ContactInfoRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, is.Email),
	)
}

type AcademicInfoRequest struct {
	AdmitYear          string `json:"admit_year"`
	AdmitGrade         string `json:"admit_grade"`
	PassoutYear        string `json:"passout_year"`
	PassoutGrade       string `json:"passout_grade"`
	CurrentInstitution string `json:"current_institution"`
	CurrentDegree      string `json:"current_degree"`
	FieldOfStudy       string `json:"field_of_study"`
	CurrentlyStudying  bool   `json:"currently_studying"`
	GradYear           string `json:"grad_year"`
	NeedsScholarship   *bool  `json:"needs_scholarship,omitempty"`
}

func (req *AcademicInfoRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.AdmitYear, is.Digit),
		validation.Field(&req.PassoutYear, is.Digit),
		validation.Field(&req.GradYear, is.Digit),
	)
}

type FamilyAddressRequest struct {
	FatherName       string `json:"father_name"`
	MotherName       string `json:"mother_name"`
	PresentAddress   string `json:"present_address"`
	PermanentAddress string `json:"permanent_address"`
	SameAsPresent    bool   `json:"same_as_present"`
	IsWorking        bool   `json:"is_working"`
	Company          string `json:"company"`
	Position         string `json:"position"`
}

func (req *FamilyAddressRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FatherName, validation.Length(0, 100)),
		validation.Field(&req.MotherName, validation.Length(0, 100)),
	)
}

type PerkToggleRequest struct {
	Perk       string `json:"perk"`
	On         bool   `json:"on"`
	JacketSize string `json:"jacket_size,omitempty"`
}

func (req *PerkToggleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Perk, validation.Required, validation.In("welcome_gift", "jacket", "special_gift_hamper")),
		validation.Field(&req.JacketSize, validation.In("", "S", "M", "L", "XL", "XXL", "XXXL")),
	)
}

type DonationRequest struct {
	Amount int  `json:"amount"`
	Preset bool `json:"preset"`
}

func (req *DonationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.Min(0)),
	)
}

type PaymentActionRequest struct {
	Action    string `json:"action"`
	Reference string `json:"reference,omitempty"`
}

func (req *PaymentActionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Action, validation.Required, validation.In(
			"pay_now", "pay_later", "begin", "success", "failure", "retry", "set_reference", "back_to_options",
		)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}

type ApprovePaymentRequest struct {
	Approved *bool `json:"approved"`
}

func (req *ApprovePaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Approved, validation.NotNil),
	)
}
