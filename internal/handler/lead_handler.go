package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/healthclarity/lead-intake-api/internal/dto"
	"github.com/healthclarity/lead-intake-api/internal/service"
	appErrors "github.com/healthclarity/lead-intake-api/pkg/errors"
	"github.com/healthclarity/lead-intake-api/pkg/response"
)

type leadService interface {
	Submit(ctx context.Context, req *dto.SubmitLeadRequest) (*service.AdmissionResult, error)
	TrackReferral(ctx context.Context, source string) error
}

// LeadHandler exposes the intake endpoints.
type LeadHandler struct {
	service leadService
}

// NewLeadHandler builds a new handler.
func NewLeadHandler(service leadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// Submit godoc
// @Summary Submit a lead intake form
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body dto.SubmitLeadRequest true "Lead payload"
// @Success 200 {object} dto.SubmitLeadResponse
// @Router /submit-lead [post]
func (h *LeadHandler) Submit(c *gin.Context) {
	var req dto.SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.SubmitLeadResponse{
		Status: string(result.Status),
		LeadID: result.LeadID,
	})
}

// TrackReferral godoc
// @Summary Track a referral source
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body dto.TrackReferralRequest true "Referral payload"
// @Success 200 {object} dto.TrackReferralResponse
// @Router /track-referral [post]
func (h *LeadHandler) TrackReferral(c *gin.Context) {
	var req dto.TrackReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid referral payload"))
		return
	}

	if err := h.service.TrackReferral(c.Request.Context(), req.Source); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.TrackReferralResponse{Status: "ok"})
}

// bindError names the first failing field when the payload reached the
// validator; malformed JSON stays a generic validation error. Consent
// and contact-format rejections are not produced here, the admission
// policy owns those and their ordering.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msg := fmt.Sprintf("invalid lead payload: %s failed on %s", verrs[0].Field(), verrs[0].Tag())
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, msg)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lead payload")
}
