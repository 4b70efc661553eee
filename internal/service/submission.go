package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/repository"
)

var ErrAlreadyRegistered = errors.New("email already has a registration")

type RegistrationRepository interface {
	Create(ctx context.Context, rec domain.RegistrationRecord) (domain.RegistrationRecord, error)
	FindByEmail(ctx context.Context, email string) (domain.RegistrationRecord, error)
}

type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password, name string) (domain.Identity, error)
}

type ObjectStorage interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// StagedPhoto is a file selected in the wizard but not yet uploaded.
type StagedPhoto struct {
	Name string
	Data []byte
}

// SubmissionResult reports what the pipeline produced. UploadErr is
// non-nil when the photo upload failed; the registration itself still
// persisted, so callers must present it as a warning, not a failure.
type SubmissionResult struct {
	Record    domain.RegistrationRecord
	UploadErr error
}

// SubmissionPipeline turns a completed draft into a durable
// registration record plus a provisioned identity. Steps run strictly
// in sequence; everything except the photo upload is fatal. There is no
// rollback of the provisioned identity when a later step fails, and the
// duplicate-email pre-check is best effort, not transactional.
type SubmissionPipeline struct {
	regs     RegistrationRepository
	identity IdentityProvider
	storage  ObjectStorage
}

func NewSubmissionPipeline(regs RegistrationRepository, identity IdentityProvider, storage ObjectStorage) *SubmissionPipeline {
	return &SubmissionPipeline{
		regs:     regs,
		identity: identity,
		storage:  storage,
	}
}

func (p *SubmissionPipeline) Run(ctx context.Context, draft *domain.RegistrationDraft, photo *StagedPhoto) (SubmissionResult, error) {
	// Duplicate guard by email.
	_, err := p.regs.FindByEmail(ctx, draft.Contact.Email)
	if err == nil {
		return SubmissionResult{}, ErrAlreadyRegistered
	}
	if !errors.Is(err, repository.ErrRegistrationNotFound) {
		return SubmissionResult{}, fmt.Errorf("p.regs.FindByEmail -> %w", err)
	}

	// Identity provisioning. ErrEmailInUse is distinct from the
	// duplicate-registration condition above.
	identity, err := p.identity.CreateIdentity(ctx, draft.Contact.Email, draft.Password, draft.DisplayName)
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			return SubmissionResult{}, ErrEmailInUse
		}

		return SubmissionResult{}, fmt.Errorf("p.identity.CreateIdentity -> %w", err)
	}

	// Stored-for-reference copy of the password, never used to
	// authenticate.
	passwordHash, err := hashPassword(draft.Password)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("hashPassword -> %w", err)
	}

	// Asset finalization. A failed upload degrades: the record persists
	// with the best-available reference.
	photoURL := draft.PhotoReference
	var uploadErr error
	if photo != nil {
		url, err := p.storage.Upload(ctx, photo.Name, photo.Data)
		if err != nil {
			uploadErr = fmt.Errorf("p.storage.Upload -> %w", err)
			zap.L().Warn("photo upload failed, persisting without it",
				zap.Int("identifier", draft.Identifier),
				zap.Error(err),
			)
		} else {
			photoURL = url
		}
	}

	rec := draft.Finalize(passwordHash, photoURL, identity.ID)
	created, err := p.regs.Create(ctx, rec)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("p.regs.Create -> %w", err)
	}

	zap.L().Info("registration submitted",
		zap.Uint("record_id", created.ID),
		zap.Int("identifier", created.Identifier),
		zap.Int("payable", created.Payable),
		zap.Bool("paid", created.Paid),
	)

	return SubmissionResult{
		Record:    created,
		UploadErr: uploadErr,
	}, nil
}
