package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alumlink/reunion-api/internal/api/handler/v1/request"
	"github.com/alumlink/reunion-api/internal/api/handler/v1/response"
	"github.com/alumlink/reunion-api/internal/api/middleware"
	"github.com/alumlink/reunion-api/internal/domain"
	"github.com/alumlink/reunion-api/internal/service"
)

type RegistrationService interface {
	GetByIdentity(ctx context.Context, identityID uint) (domain.RegistrationRecord, error)
	ApprovePayment(ctx context.Context, recordID uint, approved bool, actor domain.Identity) error
}

type IdentityService interface {
	GetIdentity(ctx context.Context, id uint) (domain.Identity, error)
}

type RegistrationHandler struct {
	svc        RegistrationService
	identities IdentityService
}

func NewRegistrationHandler(svc RegistrationService, identities IdentityService) *RegistrationHandler {
	return &RegistrationHandler{
		svc:        svc,
		identities: identities,
	}
}

func (h *RegistrationHandler) actor(ctx *gin.Context) (domain.Identity, *response.Err) {
	raw, ok := ctx.Get(middleware.IdentityIDKey)
	if !ok {
		return domain.Identity{}, response.ErrWrongCredentials(errors.New("not authenticated"))
	}

	identityID, ok := raw.(uint)
	if !ok {
		return domain.Identity{}, response.ErrInternalServerError(fmt.Errorf("unexpected identity key type %T", raw))
	}

	identity, err := h.identities.GetIdentity(ctx.Request.Context(), identityID)
	if err != nil {
		return domain.Identity{}, response.ErrInternalServerError(fmt.Errorf("h.identities.GetIdentity -> %w", err))
	}

	return identity, nil
}

// HandleGetMyRegistration godoc
// @Summary      Get the registration owned by the authenticated identity
// @Tags         registrations
// @Produce      json
// @Success      200  {object}  domain.RegistrationRecord
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations/me [get]
// @Security BearerAuth
func (h *RegistrationHandler) HandleGetMyRegistration(ctx *gin.Context) {
	identity, respErr := h.actor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	rec, err := h.svc.GetByIdentity(ctx.Request.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("registration", "identityID", identity.ID))
			return
		}

		err = fmt.Errorf("v1.HandleGetMyRegistration -> h.svc.GetByIdentity -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, rec)
}

// HandleApprovePayment godoc
// @Summary      Approve or reject a user-attested payment
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        registrationID  path  int  true  "registration record ID"
// @Param        request         body  request.ApprovePaymentRequest  true  "request body"
// @Success      204  "no content"
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations/{registrationID}/payment/approve [patch]
// @Security BearerAuth
func (h *RegistrationHandler) HandleApprovePayment(ctx *gin.Context) {
	identity, respErr := h.actor(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	recordID, err := strconv.ParseUint(ctx.Param("registrationID"), 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid registration ID: %w", err)))
		return
	}

	var req request.ApprovePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err = h.svc.ApprovePayment(ctx.Request.Context(), uint(recordID), *req.Approved, identity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAdmin):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "id", recordID))
		default:
			err = fmt.Errorf("v1.HandleApprovePayment -> h.svc.ApprovePayment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
