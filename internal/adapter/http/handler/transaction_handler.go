package handler

import (
	"strings"

	"biosecure-pay/internal/adapter/http/dto"
	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/apperror"
	"biosecure-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey lets a client retry initiation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

const defaultPageSize = 20

// TransactionHandler drives the authorization state machine over HTTP.
type TransactionHandler struct {
	txSvc        ports.TransactionService
	statementSvc ports.StatementService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txSvc ports.TransactionService, statementSvc ports.StatementService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc, statementSvc: statementSvc}
}

// Initiate handles POST /api/v1/transactions.
func (h *TransactionHandler) Initiate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.txSvc.Initiate(c.Request.Context(), ports.InitiateRequest{
		UserID:         userID,
		Amount:         req.Amount,
		Currency:       strings.ToUpper(req.Currency),
		Recipient:      req.Recipient,
		AccountID:      req.AccountID,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// Authenticate handles POST /api/v1/transactions/:id/authenticate.
func (h *TransactionHandler) Authenticate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txID, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	var req dto.AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	proofs := make([]domain.FactorProof, 0, len(req.Factors))
	for _, f := range req.Factors {
		proofs = append(proofs, domain.FactorProof{Type: domain.FactorType(f.Type), Template: f.Template})
	}

	txn, err := h.txSvc.Authenticate(c.Request.Context(), userID, txID, proofs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(txn))
}

// Execute handles POST /api/v1/transactions/:id/execute.
func (h *TransactionHandler) Execute(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txID, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	txn, err := h.txSvc.Execute(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ExecuteResponse{
		TransactionID:     txn.ID.String(),
		State:             txn.State,
		ProviderReference: txn.ProviderReference,
	})
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txID, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	txn, err := h.txSvc.Get(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(txn))
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q dto.TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultPageSize
	}

	params := ports.TransactionListParams{
		UserID: userID,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.State != "" {
		state := domain.TransactionState(q.State)
		params.State = &state
	}

	items, err := h.txSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ListResponse{Items: items, Limit: q.Limit, Offset: q.Offset})
}

// Statement handles GET /api/v1/transactions/statement.
func (h *TransactionHandler) Statement(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q dto.StatementQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	st, err := h.statementSvc.Export(c.Request.Context(), ports.StatementRequest{
		UserID: userID,
		Format: ports.StatementFormat(q.Format),
		Period: q.Period,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, st.Filename, st.ContentType, st.Body)
}
