package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"biosecure-pay/internal/core/domain"
	"biosecure-pay/internal/core/ports"
	"biosecure-pay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and route patterns to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if id, ok := UserID(c); ok {
			userID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(response.RequestIDKey),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/auth/register" && method == http.MethodPost:
		return domain.AuditActionRegister, "user"
	case route == "/api/v1/auth/login" && method == http.MethodPost:
		return domain.AuditActionLogin, "session"
	case route == "/api/v1/kyc/verify" && method == http.MethodPost:
		return domain.AuditActionKYCVerify, "user"
	case route == "/api/v1/biometrics" && method == http.MethodPost:
		return domain.AuditActionEnroll, "biometric"
	case route == "/api/v1/biometrics/:id" && method == http.MethodDelete:
		return domain.AuditActionUnenroll, "biometric"
	case (route == "/api/v1/accounts/link" || route == "/api/v1/accounts") && method == http.MethodPost:
		return domain.AuditActionLinkAccount, "account"
	case route == "/api/v1/transactions" && method == http.MethodPost:
		return domain.AuditActionInitiate, "transaction"
	case route == "/api/v1/transactions/:id/authenticate" && method == http.MethodPost:
		return domain.AuditActionAuthenticate, "transaction"
	case route == "/api/v1/transactions/:id/execute" && method == http.MethodPost:
		return domain.AuditActionExecute, "transaction"
	}
	return "", ""
}
