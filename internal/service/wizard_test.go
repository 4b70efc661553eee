package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumlink/reunion-api/internal/config"
	"github.com/alumlink/reunion-api/internal/domain"
)

type fakeLookup struct {
	mu         sync.Mutex
	alumni     map[int]string
	registered map[int]bool
	gate       chan struct{}
}

func (l *fakeLookup) FindByIdentifier(_ context.Context, id int) (bool, string, error) {
	if l.gate != nil {
		<-l.gate
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	name, ok := l.alumni[id]

	return ok, name, nil
}

func (l *fakeLookup) HasRegistration(_ context.Context, id int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.registered[id], nil
}

type fakeSubmitter struct {
	mu     sync.Mutex
	calls  int
	result SubmissionResult
	err    error
}

func (f *fakeSubmitter) Run(_ context.Context, draft *domain.RegistrationDraft, _ *StagedPhoto) (SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.err != nil {
		return SubmissionResult{}, f.err
	}

	result := f.result
	result.Record.Identifier = draft.Identifier

	return result, nil
}

func newTestWizard(lookup WizardLookup, submitter Submitter) *WizardService {
	return NewWizardService(lookup, submitter, &config.EventConfig{
		RegistrationFee:  1,
		PaymentHandle:    "01911000000",
		LookupDebounceMS: 1,
	})
}

func defaultLookup() *fakeLookup {
	return &fakeLookup{
		alumni:     map[int]string{43264: "A. Mir", 50111: "R. Chowdhury"},
		registered: map[int]bool{},
	}
}

// awaitLookup installs the test hook that signals each applied or
// discarded debounced lookup.
func awaitLookup(s *Session) chan struct{} {
	ch := make(chan struct{}, 8)
	s.mu.Lock()
	s.lookupApplied = func() { ch <- struct{}{} }
	s.mu.Unlock()

	return ch
}

func fillStep1(t *testing.T, s *Session) {
	t.Helper()

	s.SetIdentifier(43264)
	s.SetDisplayName("A. Mir")
	require.NoError(t, s.SetAttendance(domain.AttendanceYes))
	coming := false
	s.SetAccompanying(&coming, 0, "")
}

func fillStep2(t *testing.T, s *Session) {
	t.Helper()

	s.SetContact(domain.Contact{
		Mobile:          "01712345678",
		SecondaryNumber: "01887654321",
		Email:           "a.mir@example.com",
	})
	s.SetPassword("sturdy7")
}

func fillStep3(t *testing.T, s *Session) {
	t.Helper()

	s.SetAcademic(domain.Academic{
		AdmitYear:     "2001",
		AdmitGrade:    "6",
		PassoutYear:   "2008",
		PassoutGrade:  "10",
		CurrentDegree: "BSc",
	})
}

func fillStep4(t *testing.T, s *Session) {
	t.Helper()

	s.SetFamily(domain.Family{FatherName: "M. Mir", MotherName: "S. Mir"})
	s.SetSameAsPresent(true)
	s.SetPresentAddress("12 Lake Road, Sylhet")
}

func advanceTo(t *testing.T, s *Session, step int) {
	t.Helper()

	fills := []func(*testing.T, *Session){fillStep1, fillStep2, fillStep3, fillStep4}
	for s.Snapshot().Step < step {
		fills[s.Snapshot().Step-1](t, s)
		require.NoError(t, s.Advance(context.Background()))
	}
}

func TestWizard_Step1Scenario_NoCompanions(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	applied := awaitLookup(s)

	s.SetIdentifier(43264)
	select {
	case <-applied:
	case <-time.After(time.Second):
		t.Fatal("debounced lookup never fired")
	}

	snap := s.Snapshot()
	assert.Equal(t, "A. Mir", snap.Draft.DisplayName, "display name auto-fills from the registry")
	require.NotNil(t, snap.IdentifierKnown)
	assert.True(t, *snap.IdentifierKnown)

	require.NoError(t, s.SetAttendance(domain.AttendanceYes))
	coming := false
	s.SetAccompanying(&coming, 0, "")

	// No accompanying details required when coming alone.
	require.NoError(t, s.Advance(context.Background()))
	assert.Equal(t, 2, s.Snapshot().Step)
}

func TestWizard_Step1_UnknownIdentifierBlocked(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()

	s.SetIdentifier(99999)
	s.SetDisplayName("Nobody")
	require.NoError(t, s.SetAttendance(domain.AttendanceNo))

	err := s.Advance(context.Background())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "identifier", vErr.Field)
}

func TestWizard_Step1_AlreadyRegisteredBlocked(t *testing.T) {
	lookup := defaultLookup()
	lookup.registered[43264] = true
	w := newTestWizard(lookup, &fakeSubmitter{})
	s := w.StartSession()

	fillStep1(t, s)

	err := s.Advance(context.Background())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "already")
	assert.Equal(t, 1, s.Snapshot().Step)
}

func TestWizard_Step1_CompanionDetailsRequired(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()

	s.SetIdentifier(43264)
	s.SetDisplayName("A. Mir")
	require.NoError(t, s.SetAttendance(domain.AttendanceMaybe))

	// Question not answered yet.
	err := s.Advance(context.Background())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "coming_with_anyone", vErr.Field)

	coming := true
	s.SetAccompanying(&coming, 0, "")
	require.ErrorAs(t, s.Advance(context.Background()), &vErr)
	assert.Equal(t, "companion_count", vErr.Field)

	s.SetAccompanying(&coming, 5, "family")
	require.ErrorAs(t, s.Advance(context.Background()), &vErr)
	assert.Equal(t, "companion_count", vErr.Field)

	s.SetAccompanying(&coming, 3, "")
	require.ErrorAs(t, s.Advance(context.Background()), &vErr)
	assert.Equal(t, "companion_relationship", vErr.Field)

	s.SetAccompanying(&coming, 3, "spouse and children")
	require.NoError(t, s.Advance(context.Background()))
}

func TestWizard_AdvanceIsIdempotentWhileGuardFails(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()

	for i := 0; i < 3; i++ {
		err := s.Advance(context.Background())
		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, 1, s.Snapshot().Step)
	}
}

func TestWizard_PasswordLengthBoundary(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	advanceTo(t, s, 2)

	s.SetContact(domain.Contact{
		Mobile:          "01712345678",
		SecondaryNumber: "01887654321",
		Email:           "a.mir@example.com",
	})

	// Exactly six characters is rejected.
	s.SetPassword("123456")
	err := s.Advance(context.Background())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "password", vErr.Field)
	assert.Equal(t, 2, s.Snapshot().Step)

	// Seven characters is the minimum accepted.
	s.SetPassword("1234567")
	require.NoError(t, s.Advance(context.Background()))
	assert.Equal(t, 3, s.Snapshot().Step)
}

func TestWizard_Step3_StudyingFieldsRequired(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	advanceTo(t, s, 3)

	s.SetAcademic(domain.Academic{
		AdmitYear:         "2001",
		AdmitGrade:        "6",
		PassoutYear:       "2008",
		PassoutGrade:      "10",
		CurrentDegree:     "MSc",
		CurrentlyStudying: true,
	})

	err := s.Advance(context.Background())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "grad_year", vErr.Field)

	needs := true
	s.SetAcademic(domain.Academic{
		AdmitYear:         "2001",
		AdmitGrade:        "6",
		PassoutYear:       "2008",
		PassoutGrade:      "10",
		CurrentDegree:     "MSc",
		CurrentlyStudying: true,
		GradYear:          "2027",
		NeedsScholarship:  &needs,
	})
	require.NoError(t, s.Advance(context.Background()))
}

func TestWizard_RetreatNeverValidates(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	advanceTo(t, s, 3)

	// Wreck a step-2 field, then walk back freely.
	s.SetPassword("")
	s.Retreat()
	assert.Equal(t, 2, s.Snapshot().Step)
	s.Retreat()
	assert.Equal(t, 1, s.Snapshot().Step)
	s.Retreat()
	assert.Equal(t, 1, s.Snapshot().Step, "retreat stops at step 1")
}

func TestWizard_PaymentFlowResetsOnReentry(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	advanceTo(t, s, 5)

	require.NoError(t, s.ChoosePayNow())
	require.NoError(t, s.BeginPayment())
	require.NoError(t, s.ReportPaymentSuccess())
	assert.True(t, s.Snapshot().Draft.Event.Paid)

	s.Retreat()
	require.NoError(t, s.Advance(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, domain.PaymentNoChoice, snap.PaymentState)
	assert.False(t, snap.Draft.Event.Paid)
	assert.Empty(t, snap.Draft.Event.PaymentReference)
}

func TestWizard_PaymentActionsOnlyAtFinalStep(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()

	err := s.ChoosePayNow()
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestWizard_SubmitRequiresPaymentChoice(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	advanceTo(t, s, 5)

	_, err := w.Submit(context.Background(), s.ID)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payment", vErr.Field)
}

func TestWizard_SubmitRequiresReferenceAfterSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	w := newTestWizard(defaultLookup(), sub)
	s := w.StartSession()
	advanceTo(t, s, 5)

	require.NoError(t, s.ChoosePayNow())
	require.NoError(t, s.BeginPayment())
	require.NoError(t, s.ReportPaymentSuccess())

	_, err := w.Submit(context.Background(), s.ID)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payment_reference", vErr.Field)
	assert.Zero(t, sub.calls, "guard failures never reach the pipeline")

	require.NoError(t, s.SetPaymentReference("TRX-77AB"))
	result, err := w.Submit(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 43264, result.Record.Identifier)
	assert.Equal(t, 1, sub.calls)

	snap := s.Snapshot()
	assert.True(t, snap.Submitted)
	assert.Empty(t, snap.Draft.DisplayName, "draft resets after submit")

	_, err = w.Submit(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, 1, sub.calls)
}

func TestWizard_SubmitFailurePreservesDraft(t *testing.T) {
	sub := &fakeSubmitter{err: ErrAlreadyRegistered}
	w := newTestWizard(defaultLookup(), sub)
	s := w.StartSession()
	advanceTo(t, s, 5)

	require.NoError(t, s.ChoosePayLater())

	_, err := w.Submit(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	snap := s.Snapshot()
	assert.False(t, snap.Submitted)
	assert.Equal(t, "A. Mir", snap.Draft.DisplayName, "draft is kept for retry")

	// A retry succeeds once the underlying condition clears.
	sub.mu.Lock()
	sub.err = nil
	sub.mu.Unlock()
	_, err = w.Submit(context.Background(), s.ID)
	require.NoError(t, err)
}

func TestWizard_SubmitRequiresJacketSize(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	advanceTo(t, s, 5)

	s.SetHamper(true)
	require.NoError(t, s.ChoosePayLater())

	_, err := w.Submit(context.Background(), s.ID)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "jacket_size", vErr.Field)

	require.NoError(t, s.SetJacketSize(domain.JacketL))
	_, err = w.Submit(context.Background(), s.ID)
	require.NoError(t, err)
}

func TestWizard_StaleLookupDiscarded(t *testing.T) {
	lookup := defaultLookup()
	lookup.gate = make(chan struct{})
	w := newTestWizard(lookup, &fakeSubmitter{})
	s := w.StartSession()
	applied := awaitLookup(s)

	s.SetIdentifier(43264)
	// Let the first debounce window elapse so its lookup is in flight
	// and parked on the gate, then supersede the identifier.
	time.Sleep(20 * time.Millisecond)
	s.SetIdentifier(50111)
	time.Sleep(20 * time.Millisecond)

	// Release both in-flight lookups.
	lookup.gate <- struct{}{}
	lookup.gate <- struct{}{}

	for i := 0; i < 2; i++ {
		select {
		case <-applied:
		case <-time.After(time.Second):
			t.Fatal("lookup results never arrived")
		}
	}

	snap := s.Snapshot()
	assert.Equal(t, "R. Chowdhury", snap.Draft.DisplayName, "only the latest identifier's result applies")
	require.NotNil(t, snap.IdentifierKnown)
	assert.True(t, *snap.IdentifierKnown)
}

func TestWizard_AdvanceAtFinalStep(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	advanceTo(t, s, 5)

	assert.ErrorIs(t, s.Advance(context.Background()), ErrAtFinalStep)
	assert.Equal(t, 5, s.Snapshot().Step)
}

func TestWizard_SessionLifecycle(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})

	s := w.StartSession()
	found, err := w.GetSession(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, found)

	_, err = w.GetSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestWizard_PaymentIntentUsesPayable(t *testing.T) {
	w := newTestWizard(defaultLookup(), &fakeSubmitter{})
	s := w.StartSession()
	advanceTo(t, s, 5)

	s.SetHamper(true)

	intent := w.PaymentIntent(s)
	assert.Equal(t, 1+domain.HamperPrice, intent.Amount)
	assert.Equal(t, 43264, intent.Identifier)
	assert.Contains(t, intent.String(), "amount=551")
}
