package handler

import (
	"biosecure-pay/internal/adapter/http/dto"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"
	"biosecure-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// KYCHandler handles identity verification.
type KYCHandler struct {
	kycSvc ports.KYCService
}

// NewKYCHandler creates a new KYCHandler.
func NewKYCHandler(kycSvc ports.KYCService) *KYCHandler {
	return &KYCHandler{kycSvc: kycSvc}
}

// Verify handles POST /api/v1/kyc/verify.
func (h *KYCHandler) Verify(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.KYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.kycSvc.Verify(c.Request.Context(), userID, req.NationalID, req.Documents)
	if err != nil {
		response.Error(c, err)
		return
	}

	docs := user.KYCDocuments
	if docs == nil {
		docs = []string{}
	}
	response.OK(c, dto.KYCResponse{
		UserID:    user.ID.String(),
		KYCStatus: user.KYCStatus,
		Documents: docs,
	})
}
