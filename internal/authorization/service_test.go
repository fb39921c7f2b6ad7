package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authdomain "github.com/taxops/fbrgate/internal/auth/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestAuthz(t *testing.T) (Service, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)

	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer}), node
}

func claimsWithRole(node *snowflake.Node, role string) authdomain.Claims {
	return authdomain.Claims{
		UserID:   node.Generate(),
		TenantID: node.Generate(),
		Role:     role,
	}
}

func TestOperatorCanSubmitInvoices(t *testing.T) {
	svc, node := newTestAuthz(t)
	claims := claimsWithRole(node, authdomain.RoleOperator)

	assert.NoError(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ActionCreate))
	assert.NoError(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ActionInvoiceSubmit))
	assert.NoError(t, svc.Authorize(context.Background(), claims, ObjectBuyer, ActionBuyerUpload))
}

func TestViewerIsReadOnly(t *testing.T) {
	svc, node := newTestAuthz(t)
	claims := claimsWithRole(node, authdomain.RoleViewer)

	assert.NoError(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ActionView))
	assert.ErrorIs(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ActionCreate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ActionInvoiceSubmit), ErrForbidden)
}

func TestOnlyAdminManagesGateway(t *testing.T) {
	svc, node := newTestAuthz(t)

	admin := claimsWithRole(node, authdomain.RoleAdmin)
	operator := claimsWithRole(node, authdomain.RoleOperator)

	assert.NoError(t, svc.Authorize(context.Background(), admin, ObjectTenant, ActionTenantManageGateway))
	assert.ErrorIs(t, svc.Authorize(context.Background(), operator, ObjectTenant, ActionTenantManageGateway), ErrForbidden)
}

func TestRoleChangeReplacesGrouping(t *testing.T) {
	svc, node := newTestAuthz(t)

	claims := claimsWithRole(node, authdomain.RoleViewer)
	assert.ErrorIs(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ActionCreate), ErrForbidden)

	// Same user, promoted: the stale viewer link must not linger.
	claims.Role = authdomain.RoleOperator
	assert.NoError(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ActionCreate))

	claims.Role = authdomain.RoleViewer
	assert.ErrorIs(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ActionCreate), ErrForbidden)
}

func TestRejectsIncompleteClaims(t *testing.T) {
	svc, node := newTestAuthz(t)

	assert.ErrorIs(t, svc.Authorize(context.Background(), authdomain.Claims{}, ObjectInvoice, ActionView), ErrInvalidActor)

	claims := claimsWithRole(node, authdomain.RoleAdmin)
	assert.ErrorIs(t, svc.Authorize(context.Background(), claims, "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(context.Background(), claims, ObjectInvoice, ""), ErrInvalidAction)
}
