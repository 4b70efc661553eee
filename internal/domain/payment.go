package domain

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

type PaymentState string

const (
	PaymentNoChoice       PaymentState = "no_choice"
	PaymentPayNow         PaymentState = "pay_now"
	PaymentAwaitingStatus PaymentState = "awaiting_status"
	PaymentSuccess        PaymentState = "success"
	PaymentFailed         PaymentState = "failed"
	PaymentPayLater       PaymentState = "pay_later"
)

// PaymentTransitionError reports a button press that is not legal from
// the current state.
type PaymentTransitionError struct {
	From   PaymentState
	Action string
}

func (e *PaymentTransitionError) Error() string {
	return fmt.Sprintf("payment action %q not allowed in state %q", e.Action, e.From)
}

// PaymentFlow is the step-5 sub-flow state machine. Every transition is
// an explicit user action; there is no automatic movement and no
// network confirmation. "Success" is an unverified user attestation
// that an admin reconciles later.
type PaymentFlow struct {
	State PaymentState `json:"state"`
}

func NewPaymentFlow() PaymentFlow {
	return PaymentFlow{State: PaymentNoChoice}
}

// Reset is called whenever the user re-enters step 5 after retreating.
// It also zeroes the payment fields written by a previous pass.
func (f *PaymentFlow) Reset(ev *EventInfo) {
	f.State = PaymentNoChoice
	ev.Paid = false
	ev.PaymentApproved = false
	ev.PaymentReference = ""
}

func (f *PaymentFlow) ChoosePayNow() error {
	if f.State != PaymentNoChoice {
		return &PaymentTransitionError{From: f.State, Action: "pay_now"}
	}

	f.State = PaymentPayNow

	return nil
}

// ChoosePayLater is terminal: the registrant settles at the venue.
func (f *PaymentFlow) ChoosePayLater(ev *EventInfo) error {
	if f.State != PaymentNoChoice && f.State != PaymentFailed {
		return &PaymentTransitionError{From: f.State, Action: "pay_later"}
	}

	f.State = PaymentPayLater
	ev.Paid = false
	ev.PaymentApproved = false
	ev.PaymentReference = ""

	return nil
}

// BeginPayment moves into the awaiting screen that shows the payment
// intent link and QR code.
func (f *PaymentFlow) BeginPayment() error {
	if f.State != PaymentPayNow {
		return &PaymentTransitionError{From: f.State, Action: "begin_payment"}
	}

	f.State = PaymentAwaitingStatus

	return nil
}

// ReportSuccess records the user's attestation that the payment went
// through. The transaction reference is collected separately and the
// step-5 guard refuses to submit until it is non-empty. Approval stays
// false pending admin review.
func (f *PaymentFlow) ReportSuccess(ev *EventInfo) error {
	if f.State != PaymentAwaitingStatus {
		return &PaymentTransitionError{From: f.State, Action: "report_success"}
	}

	f.State = PaymentSuccess
	ev.Paid = true
	ev.PaymentApproved = false

	return nil
}

func (f *PaymentFlow) ReportFailure() error {
	if f.State != PaymentAwaitingStatus {
		return &PaymentTransitionError{From: f.State, Action: "report_failure"}
	}

	f.State = PaymentFailed

	return nil
}

func (f *PaymentFlow) RetryPayment() error {
	if f.State != PaymentFailed {
		return &PaymentTransitionError{From: f.State, Action: "retry_payment"}
	}

	f.State = PaymentAwaitingStatus

	return nil
}

// SetReference stores the human-readable transaction reference after a
// success attestation.
func (f *PaymentFlow) SetReference(ev *EventInfo, ref string) error {
	if f.State != PaymentSuccess {
		return &PaymentTransitionError{From: f.State, Action: "set_reference"}
	}

	ev.PaymentReference = ref

	return nil
}

// BackToOptions leaves the pay-later choice so a different one may
// follow. Approval and reference go back to their defaults.
func (f *PaymentFlow) BackToOptions(ev *EventInfo) error {
	if f.State != PaymentPayLater {
		return &PaymentTransitionError{From: f.State, Action: "back_to_options"}
	}

	f.State = PaymentNoChoice
	ev.PaymentApproved = false
	ev.PaymentReference = ""

	return nil
}

// PaymentIntent is the canonical payment request: the payable amount
// plus a note carrying the registrant's identifier. The link and the QR
// code are two renderings of the same string, not separate attempts.
type PaymentIntent struct {
	Payee      string
	Amount     int
	Identifier int
}

func NewPaymentIntent(payee string, amount, identifier int) PaymentIntent {
	return PaymentIntent{
		Payee:      payee,
		Amount:     amount,
		Identifier: identifier,
	}
}

func (i PaymentIntent) String() string {
	q := url.Values{}
	q.Set("payee", i.Payee)
	q.Set("amount", fmt.Sprintf("%d", i.Amount))
	q.Set("note", fmt.Sprintf("reunion-reg-%d", i.Identifier))

	return "payment://pay?" + q.Encode()
}

// QRPNG renders the canonical intent string as a scannable PNG.
func (i PaymentIntent) QRPNG(size int) ([]byte, error) {
	png, err := qrcode.Encode(i.String(), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode.Encode -> %w", err)
	}

	return png, nil
}
