package handler

import (
	"biosecure-pay/internal/adapter/http/dto"
	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"
	"biosecure-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles linked bank accounts.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// Link handles POST /api/v1/accounts/link, exchanging a provider auth code.
func (h *AccountHandler) Link(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.LinkAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	acc, err := h.accountSvc.Link(c.Request.Context(), userID, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, acc)
}

// Add handles POST /api/v1/accounts for accounts already known to the caller.
func (h *AccountHandler) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.AddAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	acc, err := h.accountSvc.AddLinkedAccount(c.Request.Context(), userID, ports.LinkAccountInput{
		AccountID:     req.AccountID,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, acc)
}

// List handles GET /api/v1/accounts.
func (h *AccountHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	accounts, err := h.accountSvc.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if accounts == nil {
		accounts = []domain.LinkedAccount{}
	}
	response.OK(c, accounts)
}
