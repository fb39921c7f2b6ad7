package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/taxops/fbrgate/internal/auth/domain"
	"github.com/taxops/fbrgate/internal/tenantctx"
)

const contextClaimsKey = "auth_claims"

// AuthRequired authenticates the bearer token and stashes the verified
// claims on the request.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.authsvc.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextClaimsKey, claims)
		c.Next()
	}
}

// TenantContext scopes the request to the tenant carried in the token.
func (s *Server) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromGin(c)
		if !ok || claims.TenantID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		ctx := tenantctx.WithTenantID(c.Request.Context(), claims.TenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) requireAuthz(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromGin(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), claims, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func claimsFromGin(c *gin.Context) (authdomain.Claims, bool) {
	value, exists := c.Get(contextClaimsKey)
	if !exists {
		return authdomain.Claims{}, false
	}
	claims, ok := value.(authdomain.Claims)
	return claims, ok
}
