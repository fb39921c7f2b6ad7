package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/taxops/fbrgate/internal/auth/domain"
	"github.com/taxops/fbrgate/internal/authorization"
	buyerdomain "github.com/taxops/fbrgate/internal/buyer/domain"
	gatewaydomain "github.com/taxops/fbrgate/internal/gateway/domain"
	invoicedomain "github.com/taxops/fbrgate/internal/invoice/domain"
	"github.com/taxops/fbrgate/internal/lineitem"
	productdomain "github.com/taxops/fbrgate/internal/product/domain"
	ratetabledomain "github.com/taxops/fbrgate/internal/ratetable/domain"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if failed := asGatewayValidationFailure(err); failed != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "gateway_validation_failed",
			Message: "the gateway rejected the invoice",
			Errors:  itemValidationErrors(failed.Items),
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrUserDisabled),
		errors.Is(err, buyerdomain.ErrInvalidTenant),
		errors.Is(err, productdomain.ErrInvalidTenant),
		errors.Is(err, invoicedomain.ErrInvalidTenant):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, tenantdomain.ErrDuplicateNTN),
		errors.Is(err, buyerdomain.ErrDuplicateNTN),
		errors.Is(err, productdomain.ErrDuplicateCode),
		errors.Is(err, invoicedomain.ErrAlreadyFinal),
		errors.Is(err, invoicedomain.ErrNotValidated),
		errors.Is(err, invoicedomain.ErrNotDraft):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, gatewaydomain.ErrGatewayUnavailable),
		errors.Is(err, gatewaydomain.ErrTokenExhausted):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "gateway_unavailable",
			Message: "the tax authority gateway is unreachable",
		}
	case errors.Is(err, gatewaydomain.ErrNoToken),
		errors.Is(err, gatewaydomain.ErrUnknownEnvironment):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_not_configured",
			Message: "gateway credentials are missing or invalid",
		}
	case errors.Is(err, invoicedomain.ErrMissingNumber),
		errors.Is(err, invoicedomain.ErrUnknownGateway),
		errors.Is(err, invoicedomain.ErrSubmissionRejected):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func asGatewayValidationFailure(err error) *invoicedomain.ValidationFailedError {
	var failed *invoicedomain.ValidationFailedError
	if errors.As(err, &failed) && failed != nil {
		return failed
	}
	return nil
}

func itemValidationErrors(items []gatewaydomain.ItemError) []ValidationError {
	out := make([]ValidationError, 0, len(items))
	for _, item := range items {
		out = append(out, ValidationError{
			Field:   "items[" + item.ItemSNo + "]",
			Code:    item.ErrorCode,
			Message: item.Message,
		})
	}
	return out
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, lineitem.ErrInvalidHSCode):
		return true
	case isTenantValidationError(err),
		isBuyerValidationError(err),
		isProductValidationError(err),
		isAuthValidationError(err),
		isInvoiceValidationError(err),
		isRateTableValidationError(err):
		return true
	default:
		return false
	}
}

func isTenantValidationError(err error) bool {
	switch {
	case errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidNTN),
		errors.Is(err, tenantdomain.ErrInvalidProvince),
		errors.Is(err, tenantdomain.ErrInvalidEnv):
		return true
	default:
		return false
	}
}

func isBuyerValidationError(err error) bool {
	switch {
	case errors.Is(err, buyerdomain.ErrInvalidNTN),
		errors.Is(err, buyerdomain.ErrInvalidName),
		errors.Is(err, buyerdomain.ErrInvalidProvince),
		errors.Is(err, buyerdomain.ErrInvalidRegistration),
		errors.Is(err, buyerdomain.ErrEmptyUpload),
		errors.Is(err, buyerdomain.ErrUnreadableUpload),
		errors.Is(err, buyerdomain.ErrUploadMissingColumns):
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidHSCode),
		errors.Is(err, productdomain.ErrInvalidRateSpec):
		return true
	default:
		return false
	}
}

func isAuthValidationError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrWeakPassword),
		errors.Is(err, authdomain.ErrInvalidRole):
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch {
	case errors.Is(err, invoicedomain.ErrInvalidBuyer),
		errors.Is(err, invoicedomain.ErrNoItems):
		return true
	default:
		return false
	}
}

func isRateTableValidationError(err error) bool {
	switch {
	case errors.Is(err, ratetabledomain.ErrInvalidRateOption),
		errors.Is(err, ratetabledomain.ErrInvalidSchedule):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, buyerdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return rootMessage(err)
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if field, ok := strings.CutPrefix(code, "invalid_"); ok {
		return field
	}
	return ""
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrAlreadyFinal):
		return "invoice already submitted"
	case errors.Is(err, invoicedomain.ErrNotValidated):
		return "invoice must be validated first"
	default:
		return "conflict"
	}
}

func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

// classifyErrorForLog buckets request errors for the access log.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "error", payload.Type
	case status >= http.StatusBadRequest:
		return "warn", payload.Type
	default:
		return "info", payload.Type
	}
}
