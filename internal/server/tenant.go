package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taxops/fbrgate/internal/province"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
	"github.com/taxops/fbrgate/internal/tenantctx"
)

func (s *Server) GetTenant(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	tenant, err := s.tenantSvc.GetByID(c.Request.Context(), tenantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

type updateGatewayRequest struct {
	Environment  string `json:"environment"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (s *Server) UpdateTenantGateway(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req updateGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenant, err := s.tenantSvc.UpdateGateway(c.Request.Context(), tenantdomain.UpdateGatewayRequest{
		ID:           tenantID.String(),
		Environment:  req.Environment,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tenant})
}

func (s *Server) ListProvinces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": province.DefaultList()})
}

// ResolveProvince maps free-text province input to a canonical code. An
// unresolvable name yields an empty code, not an error, so callers can
// fall back to manual selection.
func (s *Server) ResolveProvince(c *gin.Context) {
	input := c.Query("name")
	if input == "" {
		AbortWithError(c, newValidationError("name", "required", "name query parameter is required"))
		return
	}

	code := province.Resolve(input, province.DefaultList())
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"input": input, "code": code}})
}
