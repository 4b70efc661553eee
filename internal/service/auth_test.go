package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository"
)

type fakeIdentityRepo struct {
	byEmail map[string]domain.Identity
	nextID  uint
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{byEmail: make(map[string]domain.Identity)}
}

func (r *fakeIdentityRepo) Create(_ context.Context, identity domain.Identity) (domain.Identity, error) {
	if _, ok := r.byEmail[identity.Email]; ok {
		return domain.Identity{}, repository.ErrIdentityEmailExists
	}

	r.nextID++
	identity.ID = r.nextID
	r.byEmail[identity.Email] = identity

	return identity, nil
}

func (r *fakeIdentityRepo) FindByID(_ context.Context, id uint) (domain.Identity, error) {
	for _, identity := range r.byEmail {
		if identity.ID == id {
			return identity, nil
		}
	}

	return domain.Identity{}, repository.ErrIdentityNotFound
}

func (r *fakeIdentityRepo) FindByEmail(_ context.Context, email string) (domain.Identity, error) {
	identity, ok := r.byEmail[email]
	if !ok {
		return domain.Identity{}, repository.ErrIdentityNotFound
	}

	return identity, nil
}

func TestAuthService_CreateIdentityAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeIdentityRepo())
	ctx := context.Background()

	created, err := svc.CreateIdentity(ctx, "a.mir@example.com", "sturdy7", "A. Mir")
	require.NoError(t, err)
	assert.Equal(t, "alumni", created.Role)
	assert.NotEqual(t, "sturdy7", created.Password, "never stored in the clear")

	logged, err := svc.Login(ctx, "a.mir@example.com", "sturdy7")
	require.NoError(t, err)
	assert.Equal(t, created.ID, logged.ID)

	_, err = svc.Login(ctx, "a.mir@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(ctx, "nobody@example.com", "sturdy7")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeIdentityRepo())
	ctx := context.Background()

	_, err := svc.CreateIdentity(ctx, "a.mir@example.com", "sturdy7", "A. Mir")
	require.NoError(t, err)

	_, err = svc.CreateIdentity(ctx, "a.mir@example.com", "another7", "Impostor")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

type fakeRegStore struct {
	byIdentity map[uint]domain.RegistrationRecord
	approvals  map[uint]bool
}

func (s *fakeRegStore) FindByIdentityID(_ context.Context, identityID uint) (domain.RegistrationRecord, error) {
	rec, ok := s.byIdentity[identityID]
	if !ok {
		return domain.RegistrationRecord{}, repository.ErrRegistrationNotFound
	}

	return rec, nil
}

func (s *fakeRegStore) SetPaymentApproval(_ context.Context, id uint, approved bool) error {
	if _, ok := s.approvals[id]; !ok {
		return repository.ErrRegistrationNotFound
	}

	s.approvals[id] = approved

	return nil
}

func TestRegistrationService_GetByIdentity(t *testing.T) {
	store := &fakeRegStore{
		byIdentity: map[uint]domain.RegistrationRecord{7: {ID: 3, Identifier: 43264}},
	}
	svc := NewRegistrationService(store)

	rec, err := svc.GetByIdentity(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 43264, rec.Identifier)

	_, err = svc.GetByIdentity(context.Background(), 8)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestRegistrationService_ApprovePayment(t *testing.T) {
	store := &fakeRegStore{approvals: map[uint]bool{3: false}}
	svc := NewRegistrationService(store)
	ctx := context.Background()

	admin := domain.Identity{ID: 1, Role: "admin"}
	alumni := domain.Identity{ID: 2, Role: "alumni"}

	err := svc.ApprovePayment(ctx, 3, true, alumni)
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.False(t, store.approvals[3])

	require.NoError(t, svc.ApprovePayment(ctx, 3, true, admin))
	assert.True(t, store.approvals[3])

	err = svc.ApprovePayment(ctx, 99, true, admin)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}
