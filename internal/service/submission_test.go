package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository"
)

type fakeRegRepo struct {
	byEmail map[string]domain.RegistrationRecord
	nextID  uint
	failure error
}

func newFakeRegRepo() *fakeRegRepo {
	return &fakeRegRepo{byEmail: make(map[string]domain.RegistrationRecord)}
}

func (r *fakeRegRepo) Create(_ context.Context, rec domain.RegistrationRecord) (domain.RegistrationRecord, error) {
	if r.failure != nil {
		return domain.RegistrationRecord{}, r.failure
	}

	r.nextID++
	rec.ID = r.nextID
	r.byEmail[rec.Email] = rec

	return rec, nil
}

func (r *fakeRegRepo) FindByEmail(_ context.Context, email string) (domain.RegistrationRecord, error) {
	rec, ok := r.byEmail[email]
	if !ok {
		return domain.RegistrationRecord{}, repository.ErrRegistrationNotFound
	}

	return rec, nil
}

type fakeIdentityProvider struct {
	taken  map[string]bool
	nextID uint
	calls  int
}

func (p *fakeIdentityProvider) CreateIdentity(_ context.Context, email, password, name string) (domain.Identity, error) {
	p.calls++
	if p.taken[email] {
		return domain.Identity{}, ErrEmailInUse
	}

	p.nextID++

	return domain.Identity{ID: p.nextID, Email: email, Name: name, Role: "alumni"}, nil
}

type fakeStorage struct {
	fail  bool
	calls int
}

func (s *fakeStorage) Upload(_ context.Context, name string, _ []byte) (string, error) {
	s.calls++
	if s.fail {
		return "", errors.New("storage unreachable")
	}

	return "https://cdn.example.com/photos/" + name, nil
}

func completedDraft() domain.RegistrationDraft {
	d := domain.NewDraft(1)
	d.Identifier = 43264
	d.DisplayName = "A. Mir"
	d.Password = "sturdy7"
	d.Attendance = domain.AttendanceYes
	d.Contact = domain.Contact{
		Mobile:          "01712345678",
		SecondaryNumber: "01887654321",
		Email:           "a.mir@example.com",
	}
	d.Academic = domain.Academic{AdmitYear: "2001", PassoutYear: "2008"}
	d.Family = domain.Family{FatherName: "M. Mir", MotherName: "S. Mir"}
	d.SetSameAsPresent(true)
	d.SetPresentAddress("12 Lake Road, Sylhet")

	return d
}

func TestSubmissionPipeline_Run(t *testing.T) {
	regs := newFakeRegRepo()
	ids := &fakeIdentityProvider{}
	store := &fakeStorage{}
	pipeline := NewSubmissionPipeline(regs, ids, store)

	draft := completedDraft()
	photo := &StagedPhoto{Name: "me.jpg", Data: []byte("jpeg-bytes")}

	result, err := pipeline.Run(context.Background(), &draft, photo)
	require.NoError(t, err)
	require.Nil(t, result.UploadErr)

	rec := result.Record
	assert.NotZero(t, rec.ID)
	assert.Equal(t, 43264, rec.Identifier)
	assert.Equal(t, 2001, rec.AdmitYear, "years persist as numbers")
	assert.Equal(t, "https://cdn.example.com/photos/me.jpg", rec.PhotoURL)
	assert.Equal(t, uint(1), rec.IdentityID, "record points at the provisioned identity")

	assert.NotEqual(t, "sturdy7", rec.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte("sturdy7")))
}

func TestSubmissionPipeline_DuplicateEmailRejected(t *testing.T) {
	regs := newFakeRegRepo()
	ids := &fakeIdentityProvider{}
	pipeline := NewSubmissionPipeline(regs, ids, &fakeStorage{})

	first := completedDraft()
	_, err := pipeline.Run(context.Background(), &first, nil)
	require.NoError(t, err)

	second := completedDraft()
	second.Identifier = 50111
	_, err = pipeline.Run(context.Background(), &second, nil)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	assert.Len(t, regs.byEmail, 1, "no second record for the same email")
	assert.Equal(t, 1, ids.calls, "the guard fires before identity provisioning")
}

func TestSubmissionPipeline_EmailInUseIsDistinct(t *testing.T) {
	// The email already has an identity but no registration record, e.g.
	// a previous submission that died after provisioning.
	ids := &fakeIdentityProvider{taken: map[string]bool{"a.mir@example.com": true}}
	regs := newFakeRegRepo()
	pipeline := NewSubmissionPipeline(regs, ids, &fakeStorage{})

	draft := completedDraft()
	_, err := pipeline.Run(context.Background(), &draft, nil)
	assert.ErrorIs(t, err, ErrEmailInUse)
	assert.NotErrorIs(t, err, ErrAlreadyRegistered)
	assert.Empty(t, regs.byEmail)
}

func TestSubmissionPipeline_UploadFailureDegrades(t *testing.T) {
	regs := newFakeRegRepo()
	store := &fakeStorage{fail: true}
	pipeline := NewSubmissionPipeline(regs, &fakeIdentityProvider{}, store)

	draft := completedDraft()
	draft.PhotoReference = "local:me.jpg"
	photo := &StagedPhoto{Name: "me.jpg", Data: []byte("jpeg-bytes")}

	result, err := pipeline.Run(context.Background(), &draft, photo)
	require.NoError(t, err, "a failed upload never blocks the registration")
	require.Error(t, result.UploadErr)

	assert.Len(t, regs.byEmail, 1)
	assert.Equal(t, "local:me.jpg", result.Record.PhotoURL, "the staged reference survives as a fallback")
}

func TestSubmissionPipeline_NoPhotoSkipsStorage(t *testing.T) {
	store := &fakeStorage{}
	pipeline := NewSubmissionPipeline(newFakeRegRepo(), &fakeIdentityProvider{}, store)

	draft := completedDraft()
	result, err := pipeline.Run(context.Background(), &draft, nil)
	require.NoError(t, err)
	assert.Nil(t, result.UploadErr)
	assert.Zero(t, store.calls)
	assert.Empty(t, result.Record.PhotoURL)
}

func TestSubmissionPipeline_PersistFailureSurfaces(t *testing.T) {
	regs := newFakeRegRepo()
	regs.failure = errors.New("connection refused")
	pipeline := NewSubmissionPipeline(regs, &fakeIdentityProvider{}, &fakeStorage{})

	draft := completedDraft()
	_, err := pipeline.Run(context.Background(), &draft, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p.regs.Create")
}
