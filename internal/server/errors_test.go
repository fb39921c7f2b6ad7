package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authdomain "github.com/taxops/fbrgate/internal/auth/domain"
	"github.com/taxops/fbrgate/internal/authorization"
	buyerdomain "github.com/taxops/fbrgate/internal/buyer/domain"
	gatewaydomain "github.com/taxops/fbrgate/internal/gateway/domain"
	invoicedomain "github.com/taxops/fbrgate/internal/invoice/domain"
	ratetabledomain "github.com/taxops/fbrgate/internal/ratetable/domain"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
)

func TestMapErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrUnauthorized, http.StatusUnauthorized},
		{authdomain.ErrInvalidCredentials, http.StatusUnauthorized},
		{authdomain.ErrInvalidToken, http.StatusUnauthorized},
		{authorization.ErrForbidden, http.StatusForbidden},
		{tenantdomain.ErrNotFound, http.StatusNotFound},
		{buyerdomain.ErrNotFound, http.StatusNotFound},
		{invoicedomain.ErrNotFound, http.StatusNotFound},
		{buyerdomain.ErrDuplicateNTN, http.StatusConflict},
		{invoicedomain.ErrAlreadyFinal, http.StatusConflict},
		{invoicedomain.ErrNotValidated, http.StatusConflict},
		{tenantdomain.ErrInvalidProvince, http.StatusBadRequest},
		{buyerdomain.ErrInvalidRegistration, http.StatusBadRequest},
		{invoicedomain.ErrNoItems, http.StatusBadRequest},
		{gatewaydomain.ErrGatewayUnavailable, http.StatusServiceUnavailable},
		{gatewaydomain.ErrTokenExhausted, http.StatusServiceUnavailable},
		{gatewaydomain.ErrNoToken, http.StatusBadGateway},
		{invoicedomain.ErrMissingNumber, http.StatusBadGateway},
		{invoicedomain.ErrUnknownGateway, http.StatusBadGateway},
		{invoicedomain.ErrSubmissionRejected, http.StatusBadGateway},
		{fmt.Errorf("wrapped: %w", gatewaydomain.ErrGatewayUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, _ := mapError(tc.err)
		assert.Equal(t, tc.status, status, "error %v", tc.err)
	}
}

func TestMapErrorGatewayValidationFailure(t *testing.T) {
	err := &invoicedomain.ValidationFailedError{
		Items: []gatewaydomain.ItemError{
			{ItemSNo: "1", ErrorCode: "0052", Message: "Buyer NTN/CNIC is invalid"},
			{ItemSNo: "2", ErrorCode: "0046", Message: "Rate is missing"},
		},
	}

	status, payload := mapError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "gateway_validation_failed", payload.Type)
	require.Len(t, payload.Errors, 2)
	assert.Equal(t, "items[1]", payload.Errors[0].Field)
	assert.Equal(t, "0052", payload.Errors[0].Code)
}

func TestMapErrorValidationShape(t *testing.T) {
	status, payload := mapError(tenantdomain.ErrInvalidProvince)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "province", payload.Errors[0].Field)
	assert.Equal(t, "invalid_province", payload.Errors[0].Code)
}

func TestErrorHandlingMiddlewareWritesJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, invoicedomain.ErrAlreadyFinal)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"conflict"`)
}

func TestStaleLookupReturnsNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/rates", func(c *gin.Context) {
		abortOrDiscardStale(c, ratetabledomain.ErrStaleLookup)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rates", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
