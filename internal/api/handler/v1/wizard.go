package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alumlink/reunion-api/internal/api/handler/v1/request"
	"github.com/alumlink/reunion-api/internal/api/handler/v1/response"
	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/service"
)

// maxPhotoBytes caps staged photo uploads at 5 MiB.
const maxPhotoBytes = 5 << 20

type WizardService interface {
	StartSession() *service.Session
	GetSession(id string) (*service.Session, error)
	PaymentIntent(s *service.Session) domain.PaymentIntent
	Submit(ctx context.Context, sessionID string) (service.SubmissionResult, error)
}

type WizardHandler struct {
	svc WizardService
}

func NewWizardHandler(svc WizardService) *WizardHandler {
	return &WizardHandler{
		svc: svc,
	}
}

func renderWizardErr(ctx *gin.Context, err error) {
	var (
		vErr *domain.ValidationError
		pErr *domain.PaymentTransitionError
	)

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.RenderErr(ctx, response.ErrNotFound("wizard session", "id", ctx.Param("sessionID")))
	case errors.As(err, &vErr), errors.As(err, &pErr),
		errors.Is(err, service.ErrAtFinalStep),
		errors.Is(err, service.ErrAlreadySubmitted):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrAlreadyRegistered), errors.Is(err, service.ErrEmailInUse):
		response.RenderErr(ctx, response.ErrConflict(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

func (h *WizardHandler) session(ctx *gin.Context) (*service.Session, bool) {
	s, err := h.svc.GetSession(ctx.Param("sessionID"))
	if err != nil {
		renderWizardErr(ctx, err)
		return nil, false
	}

	return s, true
}

// HandleStartWizard godoc
// @Summary      Start a registration wizard session
// @Tags         wizard
// @Produce      json
// @Success      201  {object}  response.StartWizardResponse
// @Router       /registrations/wizard [post]
func (h *WizardHandler) HandleStartWizard(ctx *gin.Context) {
	s := h.svc.StartSession()
	snap := s.Snapshot()

	ctx.JSON(http.StatusCreated, response.StartWizardResponse{
		SessionID:       snap.SessionID,
		Step:            snap.Step,
		RegistrationFee: snap.Draft.Event.RegistrationFee,
		DonationPresets: domain.DonationPresets,
	})
}

// HandleGetWizard godoc
// @Summary      Read the wizard state
// @Tags         wizard
// @Produce      json
// @Param        sessionID  path      string  true  "wizard session ID"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID} [get]
func (h *WizardHandler) HandleGetWizard(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleUpdatePersonal godoc
// @Summary      Update step-1 personal fields
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Param        request    body  request.PersonalInfoRequest  true  "request body"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/personal [put]
func (h *WizardHandler) HandleUpdatePersonal(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	var req request.PersonalInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	s.SetIdentifier(req.Identifier)
	if req.DisplayName != "" {
		s.SetDisplayName(req.DisplayName)
	}
	s.SetGender(req.Gender)
	if req.Attendance != "" {
		if err := s.SetAttendance(domain.Attendance(req.Attendance)); err != nil {
			renderWizardErr(ctx, err)
			return
		}
	}
	s.SetAccompanying(req.ComingWithAnyone, req.CompanionCount, req.CompanionRelationship)

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleUpdateContact godoc
// @Summary      Update step-2 contact fields
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Param        request    body  request.ContactInfoRequest  true  "request body"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/contact [put]
func (h *WizardHandler) HandleUpdateContact(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	var req request.ContactInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	s.SetContact(domain.Contact{
		Mobile:                req.Mobile,
		MobileHasMessaging:    req.MobileHasMessaging,
		SecondaryNumber:       req.SecondaryNumber,
		SecondaryHasMessaging: req.SecondaryHasMessaging,
		Email:                 req.Email,
	})
	if req.CopySecondaryFromMobile {
		s.CopySecondaryFromMobile()
	}
	if req.Password != "" {
		s.SetPassword(req.Password)
	}

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleUpdateAcademic godoc
// @Summary      Update step-3 academic fields
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Param        request    body  request.AcademicInfoRequest  true  "request body"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/academic [put]
func (h *WizardHandler) HandleUpdateAcademic(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	var req request.AcademicInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	s.SetAcademic(domain.Academic{
		AdmitYear:          req.AdmitYear,
		AdmitGrade:         req.AdmitGrade,
		PassoutYear:        req.PassoutYear,
		PassoutGrade:       req.PassoutGrade,
		CurrentInstitution: req.CurrentInstitution,
		CurrentDegree:      req.CurrentDegree,
		FieldOfStudy:       req.FieldOfStudy,
		CurrentlyStudying:  req.CurrentlyStudying,
		GradYear:           req.GradYear,
		NeedsScholarship:   req.NeedsScholarship,
	})

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleUpdateFamily godoc
// @Summary      Update step-4 family, address and profession fields
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Param        request    body  request.FamilyAddressRequest  true  "request body"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/family [put]
func (h *WizardHandler) HandleUpdateFamily(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	var req request.FamilyAddressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	s.SetFamily(domain.Family{
		FatherName: req.FatherName,
		MotherName: req.MotherName,
	})
	// Mirroring order matters: the flag first, then the driving field.
	s.SetSameAsPresent(req.SameAsPresent)
	s.SetPresentAddress(req.PresentAddress)
	if !req.SameAsPresent {
		s.SetPermanentAddress(req.PermanentAddress)
	}
	s.SetProfession(domain.Profession{
		IsWorking: req.IsWorking,
		Company:   req.Company,
		Position:  req.Position,
	})

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleStagePhoto godoc
// @Summary      Stage a profile photo for upload at submit time
// @Tags         wizard
// @Accept       multipart/form-data
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Param        photo      formData  file  true  "photo file"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/photo [post]
func (h *WizardHandler) HandleStagePhoto(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	file, err := ctx.FormFile("photo")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if file.Size > maxPhotoBytes {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("photo exceeds the 5 MiB limit")))
		return
	}

	opened, err := file.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		err = fmt.Errorf("v1.HandleStagePhoto -> io.ReadAll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	s.StagePhoto(file.Filename, data)

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleTogglePerk godoc
// @Summary      Toggle a reunion perk
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Param        request    body  request.PerkToggleRequest  true  "request body"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/perks [post]
func (h *WizardHandler) HandleTogglePerk(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	var req request.PerkToggleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var err error
	switch req.Perk {
	case "welcome_gift":
		err = s.SetWelcomeGift(req.On)
	case "jacket":
		err = s.SetJacket(req.On)
	case "special_gift_hamper":
		s.SetHamper(req.On)
	}
	if err == nil && req.JacketSize != "" {
		err = s.SetJacketSize(domain.JacketSize(req.JacketSize))
	}
	if err != nil {
		renderWizardErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleSetDonation godoc
// @Summary      Set the donation amount
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Param        request    body  request.DonationRequest  true  "request body"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/donation [put]
func (h *WizardHandler) HandleSetDonation(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	var req request.DonationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var err error
	if req.Preset {
		err = s.SelectDonationPreset(req.Amount)
	} else {
		err = s.SetDonation(req.Amount)
	}
	if err != nil {
		renderWizardErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandlePaymentAction godoc
// @Summary      Drive the step-5 payment sub-flow
// @Description  Actions: pay_now, pay_later, begin, success, failure, retry, set_reference, back_to_options.
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Param        request    body  request.PaymentActionRequest  true  "request body"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/payment [post]
func (h *WizardHandler) HandlePaymentAction(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	var req request.PaymentActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var err error
	switch req.Action {
	case "pay_now":
		err = s.ChoosePayNow()
	case "pay_later":
		err = s.ChoosePayLater()
	case "begin":
		err = s.BeginPayment()
	case "success":
		err = s.ReportPaymentSuccess()
	case "failure":
		err = s.ReportPaymentFailure()
	case "retry":
		err = s.RetryPayment()
	case "set_reference":
		err = s.SetPaymentReference(req.Reference)
	case "back_to_options":
		err = s.PaymentBackToOptions()
	}
	if err != nil {
		renderWizardErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandlePaymentIntent godoc
// @Summary      Get the canonical payment-intent reference
// @Tags         wizard
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Success      200  {object}  response.PaymentIntentResponse
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/payment-intent [get]
func (h *WizardHandler) HandlePaymentIntent(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	intent := h.svc.PaymentIntent(s)

	ctx.JSON(http.StatusOK, response.PaymentIntentResponse{
		Reference: intent.String(),
		Amount:    intent.Amount,
	})
}

// HandlePaymentIntentQR godoc
// @Summary      Get the payment-intent reference as a scannable QR PNG
// @Tags         wizard
// @Produce      png
// @Param        sessionID  path  string  true  "wizard session ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/payment-intent/qr [get]
func (h *WizardHandler) HandlePaymentIntentQR(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	png, err := h.svc.PaymentIntent(s).QRPNG(256)
	if err != nil {
		err = fmt.Errorf("v1.HandlePaymentIntentQR -> intent.QRPNG -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Data(http.StatusOK, "image/png", png)
}

// HandleAdvance godoc
// @Summary      Advance to the next wizard step
// @Tags         wizard
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/advance [post]
func (h *WizardHandler) HandleAdvance(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	if err := s.Advance(ctx.Request.Context()); err != nil {
		renderWizardErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleRetreat godoc
// @Summary      Go back one wizard step
// @Tags         wizard
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Success      200  {object}  service.WizardSnapshot
// @Failure      404  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/retreat [post]
func (h *WizardHandler) HandleRetreat(ctx *gin.Context) {
	s, ok := h.session(ctx)
	if !ok {
		return
	}

	s.Retreat()

	ctx.JSON(http.StatusOK, s.Snapshot())
}

// HandleSubmit godoc
// @Summary      Submit the completed registration
// @Tags         wizard
// @Produce      json
// @Param        sessionID  path  string  true  "wizard session ID"
// @Success      201  {object}  response.SubmitResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations/wizard/{sessionID}/submit [post]
func (h *WizardHandler) HandleSubmit(ctx *gin.Context) {
	result, err := h.svc.Submit(ctx.Request.Context(), ctx.Param("sessionID"))
	if err != nil {
		renderWizardErr(ctx, err)
		return
	}

	resp := response.SubmitResponse{
		Record: result.Record,
	}
	if result.UploadErr != nil {
		resp.PhotoWarning = "photo upload failed, the registration was saved without it"
	}

	ctx.JSON(http.StatusCreated, resp)
}
