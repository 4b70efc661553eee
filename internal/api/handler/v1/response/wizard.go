package response

import "github.com/alumlink/reunion-api/internal/domain"

type LoginResponse struct {
	Token    string          `json:"token"`
	Identity domain.Identity `json:"identity"`
}

type StartWizardResponse struct {
	SessionID       string `json:"session_id"`
	Step            int    `json:"step"`
	RegistrationFee int    `json:"registration_fee"`
	DonationPresets []int  `json:"donation_presets"`
}

type PaymentIntentResponse struct {
	Reference string `json:"reference"`
	Amount    int    `json:"amount"`
}

// SubmitResponse carries the persisted record plus an upload warning
// when only the photo failed, so the client never reports the whole
// registration as failed over a missing photo.
type SubmitResponse struct {
	Record       domain.RegistrationRecord `json:"record"`
	PhotoWarning string                    `json:"photo_warning,omitempty"`
}
