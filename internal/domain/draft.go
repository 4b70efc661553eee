package domain

type Attendance string

const (
	AttendanceUnset Attendance = ""
	AttendanceYes   Attendance = "yes"
	AttendanceNo    Attendance = "no"
	AttendanceMaybe Attendance = "maybe"
)

func (a Attendance) Valid() bool {
	return a == AttendanceYes || a == AttendanceNo || a == AttendanceMaybe
}

// MayAttend reports whether accompanying details become relevant.
func (a Attendance) MayAttend() bool {
	return a == AttendanceYes || a == AttendanceMaybe
}

// Accompanying is only collected when attendance is yes or maybe.
// ComingWithAnyone is a pointer because "not answered yet" must be
// distinguishable from "no".
type Accompanying struct {
	ComingWithAnyone *bool  `json:"coming_with_anyone,omitempty"`
	Count            int    `json:"count,omitempty"` // 1..4
	Relationship     string `json:"relationship,omitempty"`
}

type Contact struct {
	Mobile                string `json:"mobile"`
	MobileHasMessaging    bool   `json:"mobile_has_messaging"`
	SecondaryNumber       string `json:"secondary_number"`
	SecondaryHasMessaging bool   `json:"secondary_has_messaging"`
	Email                 string `json:"email"`
}

// Academic keeps years and grades as entered; numeric coercion happens
// once, when the draft is finalized into a record.
type Academic struct {
	AdmitYear          string `json:"admit_year"`
	AdmitGrade         string `json:"admit_grade"`
	PassoutYear        string `json:"passout_year"`
	PassoutGrade       string `json:"passout_grade"`
	CurrentInstitution string `json:"current_institution"`
	CurrentDegree      string `json:"current_degree"`
	FieldOfStudy       string `json:"field_of_study"`
	CurrentlyStudying  bool   `json:"currently_studying"`
	GradYear           string `json:"grad_year,omitempty"`
	NeedsScholarship   *bool  `json:"needs_scholarship,omitempty"`
}

type Family struct {
	FatherName string `json:"father_name"`
	MotherName string `json:"mother_name"`
}

// Address mirrors permanent from present while SameAsPresent holds.
type Address struct {
	Present       string `json:"present"`
	Permanent     string `json:"permanent"`
	SameAsPresent bool   `json:"same_as_present"`
}

type Profession struct {
	IsWorking bool   `json:"is_working"`
	Company   string `json:"company,omitempty"`
	Position  string `json:"position,omitempty"`
}

// EventInfo holds the money side of the registration. Payable is
// derived; nothing outside this package writes it.
type EventInfo struct {
	RegistrationFee  int           `json:"registration_fee"`
	Perks            PerkSelection `json:"perks"`
	Donation         int           `json:"donation"`
	DonationPreset   bool          `json:"donation_preset"`
	Payable          int           `json:"payable"`
	Paid             bool          `json:"paid"`
	PaymentApproved  bool          `json:"payment_approved"`
	PaymentReference string        `json:"payment_reference"`
}

// RegistrationDraft is the in-progress form state, owned by the wizard
// session and mutated only through its setters.
type RegistrationDraft struct {
	Identifier     int          `json:"identifier"`
	DisplayName    string       `json:"display_name"`
	Gender         string       `json:"gender"`
	Password       string       `json:"-"`
	PhotoReference string       `json:"photo_reference"`
	Attendance     Attendance   `json:"attendance"`
	Accompanying   Accompanying `json:"accompanying"`
	Contact        Contact      `json:"contact"`
	Academic       Academic     `json:"academic"`
	Family         Family       `json:"family"`
	Address        Address      `json:"address"`
	Profession     Profession   `json:"profession"`
	Event          EventInfo    `json:"event"`
}

func NewDraft(registrationFee int) RegistrationDraft {
	if registrationFee <= 0 {
		registrationFee = DefaultRegistrationFee
	}

	d := RegistrationDraft{}
	d.Event.RegistrationFee = registrationFee
	d.recomputePayable()

	return d
}

// Reset returns the draft to its empty state, keeping the
// server-assigned registration fee.
func (d *RegistrationDraft) Reset() {
	*d = NewDraft(d.Event.RegistrationFee)
}

func (d *RegistrationDraft) recomputePayable() {
	d.Event.Payable = ComputePayable(d.Event.Perks, d.Event.RegistrationFee, d.Event.Donation)
}

// SetWelcomeGift toggles the welcome gift. It is rejected while the
// hamper is selected, mirroring the disabled toggle in the form.
func (d *RegistrationDraft) SetWelcomeGift(on bool) error {
	if on && d.Event.Perks.SpecialGiftHamper {
		return NewValidationError(5, "welcome_gift", "unavailable while the gift hamper is selected")
	}

	d.Event.Perks.WelcomeGift = on
	d.recomputePayable()

	return nil
}

// SetJacket toggles the jacket, under the same hamper exclusivity.
func (d *RegistrationDraft) SetJacket(on bool) error {
	if on && d.Event.Perks.SpecialGiftHamper {
		return NewValidationError(5, "jacket", "unavailable while the gift hamper is selected")
	}

	d.Event.Perks.Jacket = on
	d.recomputePayable()

	return nil
}

// SetHamper toggles the special gift hamper. Turning it on forces the
// individual perks off.
func (d *RegistrationDraft) SetHamper(on bool) {
	d.Event.Perks.SpecialGiftHamper = on
	if on {
		d.Event.Perks.WelcomeGift = false
		d.Event.Perks.Jacket = false
	}
	d.recomputePayable()
}

func (d *RegistrationDraft) SetJacketSize(size JacketSize) error {
	if !size.Valid() {
		return NewValidationError(5, "jacket_size", "unknown size")
	}

	d.Event.Perks.JacketSize = size

	return nil
}

// SelectDonationPreset picks one of the quick-amounts, clearing any
// free-form entry state.
func (d *RegistrationDraft) SelectDonationPreset(amount int) error {
	if !IsDonationPreset(amount) {
		return NewValidationError(5, "donation", "not a preset amount")
	}

	d.Event.Donation = amount
	d.Event.DonationPreset = true
	d.recomputePayable()

	return nil
}

// SetDonation records a free-form donation, clearing any selected
// preset.
func (d *RegistrationDraft) SetDonation(amount int) error {
	if amount < 0 {
		return NewValidationError(5, "donation", "must not be negative")
	}

	d.Event.Donation = amount
	d.Event.DonationPreset = false
	d.recomputePayable()

	return nil
}

// SetPresentAddress writes the present address and keeps the permanent
// one mirrored while SameAsPresent holds.
func (d *RegistrationDraft) SetPresentAddress(addr string) {
	d.Address.Present = addr
	if d.Address.SameAsPresent {
		d.Address.Permanent = addr
	}
}

// SetPermanentAddress diverges the permanent address from the present
// one.
func (d *RegistrationDraft) SetPermanentAddress(addr string) {
	d.Address.Permanent = addr
	d.Address.SameAsPresent = false
}

func (d *RegistrationDraft) SetSameAsPresent(same bool) {
	d.Address.SameAsPresent = same
	if same {
		d.Address.Permanent = d.Address.Present
	}
}

// CopySecondaryFromMobile is the explicit "same as primary" action for
// the secondary number.
func (d *RegistrationDraft) CopySecondaryFromMobile() {
	d.Contact.SecondaryNumber = d.Contact.Mobile
	d.Contact.SecondaryHasMessaging = d.Contact.MobileHasMessaging
}
