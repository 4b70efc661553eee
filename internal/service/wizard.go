package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alumlink/reunion-api/internal/config"
	"github.com/alumlink/reunion-api/internal/domain"
)

var (
	ErrSessionNotFound  = errors.New("wizard session not found")
	ErrAlreadySubmitted = errors.New("registration already submitted")
	ErrAtFinalStep      = errors.New("already at the final step, use submit")
)

const defaultLookupDebounce = 400 * time.Millisecond

type WizardLookup interface {
	FindByIdentifier(ctx context.Context, id int) (bool, string, error)
	HasRegistration(ctx context.Context, id int) (bool, error)
}

type Submitter interface {
	Run(ctx context.Context, draft *domain.RegistrationDraft, photo *StagedPhoto) (SubmissionResult, error)
}

// lookupResult caches what the registry said about one identifier.
type lookupResult struct {
	identifier int
	exists     bool
	name       string
	registered bool
}

// Session is one registrant's pass through the five-step wizard. It
// owns the draft exclusively; every mutation goes through its methods.
// The only writer besides the caller is the debounced lookup timer,
// hence the mutex.
type Session struct {
	ID string

	mu        sync.Mutex
	step      int
	submitted bool
	draft     domain.RegistrationDraft
	payment   domain.PaymentFlow
	photo     *StagedPhoto

	lookup      WizardLookup
	debounce    time.Duration
	lookupSeq   uint64
	lookupTimer *time.Timer
	resolved    *lookupResult

	// lookupApplied is a test hook, fired after a debounced lookup
	// result is applied or discarded.
	lookupApplied func()
}

// WizardService holds the live wizard sessions. Abandoned drafts are
// never persisted; they die with their session.
type WizardService struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	lookup    WizardLookup
	submitter Submitter
	fee       int
	payee     string
	debounce  time.Duration
}

func NewWizardService(lookup WizardLookup, submitter Submitter, conf *config.EventConfig) *WizardService {
	fee := domain.DefaultRegistrationFee
	payee := ""
	debounce := defaultLookupDebounce
	if conf != nil {
		if conf.RegistrationFee > 0 {
			fee = conf.RegistrationFee
		}
		payee = conf.PaymentHandle
		if conf.LookupDebounceMS > 0 {
			debounce = time.Duration(conf.LookupDebounceMS) * time.Millisecond
		}
	}

	return &WizardService{
		sessions:  make(map[string]*Session),
		lookup:    lookup,
		submitter: submitter,
		fee:       fee,
		payee:     payee,
		debounce:  debounce,
	}
}

func (w *WizardService) StartSession() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		step:     1,
		draft:    domain.NewDraft(w.fee),
		payment:  domain.NewPaymentFlow(),
		lookup:   w.lookup,
		debounce: w.debounce,
	}

	w.mu.Lock()
	w.sessions[s.ID] = s
	w.mu.Unlock()

	return s
}

func (w *WizardService) GetSession(id string) (*Session, error) {
	w.mu.RLock()
	s, ok := w.sessions[id]
	w.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	return s, nil
}

// PaymentIntent builds the canonical payment-intent for a session's
// current payable.
func (w *WizardService) PaymentIntent(s *Session) domain.PaymentIntent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.NewPaymentIntent(w.payee, s.draft.Event.Payable, s.draft.Identifier)
}

// WizardSnapshot is the read view handed to the HTTP layer.
type WizardSnapshot struct {
	SessionID    string                   `json:"session_id"`
	Step         int                      `json:"step"`
	Submitted    bool                     `json:"submitted"`
	Draft        domain.RegistrationDraft `json:"draft"`
	PaymentState domain.PaymentState      `json:"payment_state"`
	// IdentifierKnown / IdentifierRegistered reflect the last lookup
	// that matched the current identifier; nil while unresolved.
	IdentifierKnown      *bool `json:"identifier_known,omitempty"`
	IdentifierRegistered *bool `json:"identifier_registered,omitempty"`
}

func (s *Session) Snapshot() WizardSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := WizardSnapshot{
		SessionID:    s.ID,
		Step:         s.step,
		Submitted:    s.submitted,
		Draft:        s.draft,
		PaymentState: s.payment.State,
	}
	if s.resolved != nil && s.resolved.identifier == s.draft.Identifier {
		known := s.resolved.exists
		registered := s.resolved.registered
		snap.IdentifierKnown = &known
		snap.IdentifierRegistered = &registered
	}

	return snap
}

// SetIdentifier updates the registry identifier and schedules a
// debounced lookup. Rapid edits keep pushing the timer; only after the
// quiescence window does a lookup fire, and only the result for the
// most recent identifier is ever applied.
func (s *Session) SetIdentifier(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft.Identifier == id {
		return
	}

	s.draft.Identifier = id
	s.resolved = nil
	s.lookupSeq++
	seq := s.lookupSeq

	if s.lookupTimer != nil {
		s.lookupTimer.Stop()
	}
	if s.lookup == nil || id <= 0 {
		return
	}

	s.lookupTimer = time.AfterFunc(s.debounce, func() {
		s.runLookup(seq, id)
	})
}

func (s *Session) runLookup(seq uint64, id int) {
	ctx := context.Background()

	exists, name, err := s.lookup.FindByIdentifier(ctx, id)
	if err != nil {
		zap.L().Warn("identifier lookup failed", zap.Int("identifier", id), zap.Error(err))
		return
	}

	registered := false
	if exists {
		registered, err = s.lookup.HasRegistration(ctx, id)
		if err != nil {
			zap.L().Warn("registration lookup failed", zap.Int("identifier", id), zap.Error(err))
			return
		}
	}

	s.mu.Lock()
	if seq == s.lookupSeq {
		s.resolved = &lookupResult{
			identifier: id,
			exists:     exists,
			name:       name,
			registered: registered,
		}
		// Auto-fill stays user-editable; a later SetDisplayName simply
		// overwrites it.
		if exists && name != "" {
			s.draft.DisplayName = name
		}
	}
	applied := s.lookupApplied
	s.mu.Unlock()

	if applied != nil {
		applied()
	}
}

func (s *Session) SetDisplayName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.DisplayName = name
}

func (s *Session) SetGender(gender string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Gender = gender
}

func (s *Session) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Password = password
}

func (s *Session) SetPhotoReference(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.PhotoReference = ref
}

// StagePhoto keeps the selected file locally; the upload happens in the
// submission pipeline.
func (s *Session) StagePhoto(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photo = &StagedPhoto{Name: name, Data: data}
}

func (s *Session) SetAttendance(a domain.Attendance) error {
	if !a.Valid() {
		return domain.NewValidationError(1, "attendance", "must be yes, no or maybe")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Attendance = a

	return nil
}

func (s *Session) SetAccompanying(comingWithAnyone *bool, count int, relationship string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Accompanying = domain.Accompanying{
		ComingWithAnyone: comingWithAnyone,
		Count:            count,
		Relationship:     relationship,
	}
}

func (s *Session) SetContact(c domain.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Contact = c
}

func (s *Session) CopySecondaryFromMobile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.CopySecondaryFromMobile()
}

func (s *Session) SetAcademic(a domain.Academic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Academic = a
}

func (s *Session) SetFamily(f domain.Family) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Family = f
}

func (s *Session) SetPresentAddress(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetPresentAddress(addr)
}

func (s *Session) SetPermanentAddress(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetPermanentAddress(addr)
}

func (s *Session) SetSameAsPresent(same bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetSameAsPresent(same)
}

func (s *Session) SetProfession(p domain.Profession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Profession = p
}

func (s *Session) SetWelcomeGift(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetWelcomeGift(on)
}

func (s *Session) SetJacket(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetJacket(on)
}

func (s *Session) SetHamper(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.SetHamper(on)
}

func (s *Session) SetJacketSize(size domain.JacketSize) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetJacketSize(size)
}

func (s *Session) SetDonation(amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SetDonation(amount)
}

func (s *Session) SelectDonationPreset(amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.SelectDonationPreset(amount)
}

// requirePaymentStep gates the sub-flow actions to step 5, where the
// sub-flow lives. Callers must hold s.mu.
func (s *Session) requirePaymentStep() error {
	if s.step != 5 {
		return domain.NewValidationError(s.step, "payment", "payment actions are only available at the final step")
	}

	return nil
}

func (s *Session) ChoosePayNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePaymentStep(); err != nil {
		return err
	}
	return s.payment.ChoosePayNow()
}

func (s *Session) ChoosePayLater() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePaymentStep(); err != nil {
		return err
	}
	return s.payment.ChoosePayLater(&s.draft.Event)
}

func (s *Session) BeginPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePaymentStep(); err != nil {
		return err
	}
	return s.payment.BeginPayment()
}

func (s *Session) ReportPaymentSuccess() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePaymentStep(); err != nil {
		return err
	}
	return s.payment.ReportSuccess(&s.draft.Event)
}

func (s *Session) ReportPaymentFailure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePaymentStep(); err != nil {
		return err
	}
	return s.payment.ReportFailure()
}

func (s *Session) RetryPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePaymentStep(); err != nil {
		return err
	}
	return s.payment.RetryPayment()
}

func (s *Session) SetPaymentReference(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePaymentStep(); err != nil {
		return err
	}
	return s.payment.SetReference(&s.draft.Event, ref)
}

func (s *Session) PaymentBackToOptions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requirePaymentStep(); err != nil {
		return err
	}
	return s.payment.BackToOptions(&s.draft.Event)
}

// Advance moves forward one step when the current step's guard holds.
// A violating call is a no-op that surfaces the first unmet condition.
func (s *Session) Advance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return ErrAlreadySubmitted
	}
	if s.step >= 5 {
		return ErrAtFinalStep
	}

	var err error
	switch s.step {
	case 1:
		err = s.guardStep1(ctx)
	case 2:
		err = s.guardStep2()
	case 3:
		err = s.guardStep3()
	case 4:
		err = s.guardStep4()
	}
	if err != nil {
		return err
	}

	s.step++
	// The payment sub-flow restarts on every entry into step 5.
	if s.step == 5 {
		s.payment.Reset(&s.draft.Event)
	}

	return nil
}

// Retreat always succeeds above step 1 and never re-validates.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step > 1 {
		s.step--
	}
}

// Submit runs the step-5 guard and hands the draft to the submission
// pipeline. On success the draft resets to empty and staged files are
// dropped; on failure everything is preserved for a retry.
func (s *Session) Submit(ctx context.Context, submitter Submitter) (SubmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return SubmissionResult{}, ErrAlreadySubmitted
	}
	if s.step != 5 {
		return SubmissionResult{}, domain.NewValidationError(s.step, "step", "submission is only available at the final step")
	}
	if err := s.guardStep5(); err != nil {
		return SubmissionResult{}, err
	}

	result, err := submitter.Run(ctx, &s.draft, s.photo)
	if err != nil {
		return SubmissionResult{}, err
	}

	s.submitted = true
	s.photo = nil
	s.resolved = nil
	s.draft.Reset()

	return result, nil
}

// Submit on the service resolves the session and uses the wired
// pipeline.
func (w *WizardService) Submit(ctx context.Context, sessionID string) (SubmissionResult, error) {
	s, err := w.GetSession(sessionID)
	if err != nil {
		return SubmissionResult{}, err
	}

	return s.Submit(ctx, w.submitter)
}

func (s *Session) guardStep1(ctx context.Context) error {
	if s.draft.Identifier <= 0 {
		return domain.NewValidationError(1, "identifier", "required")
	}
	if s.draft.DisplayName == "" {
		return domain.NewValidationError(1, "display_name", "required")
	}

	res := s.resolved
	if res == nil || res.identifier != s.draft.Identifier {
		// No debounced result for the current identifier; resolve it
		// now so the guard can decide.
		exists, _, err := s.lookup.FindByIdentifier(ctx, s.draft.Identifier)
		if err != nil {
			return domain.NewValidationError(1, "identifier", "could not verify against the alumni registry")
		}
		registered := false
		if exists {
			registered, err = s.lookup.HasRegistration(ctx, s.draft.Identifier)
			if err != nil {
				return domain.NewValidationError(1, "identifier", "could not verify against the registration store")
			}
		}
		res = &lookupResult{identifier: s.draft.Identifier, exists: exists, registered: registered}
		s.resolved = res
	}
	if !res.exists {
		return domain.NewValidationError(1, "identifier", "not found in the alumni registry")
	}
	if res.registered {
		return domain.NewValidationError(1, "identifier", "already has a reunion registration")
	}

	if !s.draft.Attendance.Valid() {
		return domain.NewValidationError(1, "attendance", "required")
	}
	if s.draft.Attendance.MayAttend() {
		if s.draft.Accompanying.ComingWithAnyone == nil {
			return domain.NewValidationError(1, "coming_with_anyone", "required")
		}
		if *s.draft.Accompanying.ComingWithAnyone {
			if s.draft.Accompanying.Count < 1 || s.draft.Accompanying.Count > 4 {
				return domain.NewValidationError(1, "companion_count", "must be between 1 and 4")
			}
			if s.draft.Accompanying.Relationship == "" {
				return domain.NewValidationError(1, "companion_relationship", "required")
			}
		}
	}

	return nil
}

func (s *Session) guardStep2() error {
	if s.draft.Contact.Mobile == "" {
		return domain.NewValidationError(2, "mobile", "required")
	}
	if s.draft.Contact.SecondaryNumber == "" {
		return domain.NewValidationError(2, "secondary_number", "required")
	}
	if s.draft.Contact.Email == "" {
		return domain.NewValidationError(2, "email", "required")
	}
	if s.draft.Password == "" {
		return domain.NewValidationError(2, "password", "required")
	}
	// Strictly greater than six characters.
	if len(s.draft.Password) <= 6 {
		return domain.NewValidationError(2, "password", "must be longer than 6 characters")
	}

	return nil
}

func (s *Session) guardStep3() error {
	a := s.draft.Academic
	if a.AdmitYear == "" {
		return domain.NewValidationError(3, "admit_year", "required")
	}
	if a.AdmitGrade == "" {
		return domain.NewValidationError(3, "admit_grade", "required")
	}
	if a.PassoutYear == "" {
		return domain.NewValidationError(3, "passout_year", "required")
	}
	if a.PassoutGrade == "" {
		return domain.NewValidationError(3, "passout_grade", "required")
	}
	if a.CurrentDegree == "" {
		return domain.NewValidationError(3, "current_degree", "required")
	}
	if a.CurrentlyStudying {
		if a.GradYear == "" {
			return domain.NewValidationError(3, "grad_year", "required while studying")
		}
		if a.NeedsScholarship == nil {
			return domain.NewValidationError(3, "needs_scholarship", "required while studying")
		}
	}

	return nil
}

func (s *Session) guardStep4() error {
	if s.draft.Family.FatherName == "" {
		return domain.NewValidationError(4, "father_name", "required")
	}
	if s.draft.Family.MotherName == "" {
		return domain.NewValidationError(4, "mother_name", "required")
	}
	if s.draft.Address.Present == "" {
		return domain.NewValidationError(4, "present_address", "required")
	}
	if s.draft.Address.Permanent == "" {
		return domain.NewValidationError(4, "permanent_address", "required")
	}

	return nil
}

func (s *Session) guardStep5() error {
	if s.draft.Identifier <= 0 {
		return domain.NewValidationError(5, "identifier", "required")
	}
	if s.draft.DisplayName == "" {
		return domain.NewValidationError(5, "display_name", "required")
	}
	if s.draft.Event.Perks.NeedsJacketSize() && !s.draft.Event.Perks.JacketSize.Valid() {
		return domain.NewValidationError(5, "jacket_size", "required with a jacket or the gift hamper")
	}
	if s.draft.Event.Payable > 0 {
		if s.payment.State == domain.PaymentNoChoice {
			return domain.NewValidationError(5, "payment", "choose pay now or pay later")
		}
		if s.payment.State == domain.PaymentSuccess && s.draft.Event.PaymentReference == "" {
			return domain.NewValidationError(5, "payment_reference", "required after a successful payment")
		}
	}

	return nil
}
