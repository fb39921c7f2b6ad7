// Package authorization enforces role-based access via casbin, with
// policies persisted through the gorm adapter and role grouping scoped
// per tenant.
package authorization

import (
	"context"
	"errors"

	authdomain "github.com/taxops/fbrgate/internal/auth/domain"
	"go.uber.org/fx"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)

const (
	ObjectTenant    = "tenant"
	ObjectUser      = "user"
	ObjectBuyer     = "buyer"
	ObjectProduct   = "product"
	ObjectInvoice   = "invoice"
	ObjectRateTable = "rate_table"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionInvoiceValidate = "invoice.validate"
	ActionInvoiceSubmit   = "invoice.submit"

	ActionBuyerUpload = "buyer.upload"

	ActionTenantManageGateway = "tenant.manage_gateway"
)

type Service interface {
	// Authorize checks whether the authenticated identity may perform
	// action on object within its tenant.
	Authorize(ctx context.Context, claims authdomain.Claims, object string, action string) error
}

var Module = fx.Module("authorization.service",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
