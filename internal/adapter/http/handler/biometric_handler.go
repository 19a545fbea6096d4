package handler

import (
	"net/http"

	"biosecure-pay/internal/adapter/http/dto"
	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"
	"biosecure-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// BiometricHandler exposes the biometric registry.
type BiometricHandler struct {
	bioSvc ports.BiometricService
}

// NewBiometricHandler creates a new BiometricHandler.
func NewBiometricHandler(bioSvc ports.BiometricService) *BiometricHandler {
	return &BiometricHandler{bioSvc: bioSvc}
}

// Enroll handles POST /api/v1/biometrics.
func (h *BiometricHandler) Enroll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	id, err := h.bioSvc.Enroll(c.Request.Context(), userID, domain.FactorType(req.Type), req.Template)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.EnrollResponse{
		EnrollmentID: id.String(),
		Type:         req.Type,
	})
}

// List handles GET /api/v1/biometrics. Templates are never returned.
func (h *BiometricHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.bioSvc.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []domain.BiometricSummary{}
	}
	response.OK(c, items)
}

// Delete handles DELETE /api/v1/biometrics/:id.
func (h *BiometricHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "enrollment")
	if !ok {
		return
	}

	deleted, err := h.bioSvc.Delete(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		response.Error(c, apperror.ErrNotFound("enrollment"))
		return
	}
	c.Status(http.StatusNoContent)
}
