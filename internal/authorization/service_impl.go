package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	authdomain "github.com/taxops/fbrgate/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, claims authdomain.Claims, object string, action string) error {
	if claims.UserID == 0 || claims.TenantID == 0 || strings.TrimSpace(claims.Role) == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := fmt.Sprintf("user:%s", claims.UserID.String())
	domain := fmt.Sprintf("tenant:%s", claims.TenantID.String())
	roleName := fmt.Sprintf("role:%s", strings.ToLower(claims.Role))

	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Warn("authorization denied",
			zap.String("subject", subject),
			zap.String("tenant", domain),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping syncs the subject's role link inside the tenant domain
// with the role claimed in the token, replacing a stale link after a
// role change.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	crudObjects := []string{ObjectBuyer, ObjectProduct, ObjectInvoice}

	policies := [][]string{
		// Viewers read everything a tenant operator can see.
		{"role:viewer", ObjectBuyer, ActionView},
		{"role:viewer", ObjectProduct, ActionView},
		{"role:viewer", ObjectInvoice, ActionView},
		{"role:viewer", ObjectRateTable, ActionView},
		{"role:viewer", ObjectTenant, ActionView},

		// Operators run the day-to-day invoicing flow.
		{"role:operator", ObjectRateTable, ActionView},
		{"role:operator", ObjectTenant, ActionView},
		{"role:operator", ObjectInvoice, ActionInvoiceValidate},
		{"role:operator", ObjectInvoice, ActionInvoiceSubmit},
		{"role:operator", ObjectBuyer, ActionBuyerUpload},

		// Admins additionally manage accounts and gateway enrollment.
		{"role:admin", ObjectRateTable, ActionView},
		{"role:admin", ObjectTenant, ActionView},
		{"role:admin", ObjectTenant, ActionUpdate},
		{"role:admin", ObjectTenant, ActionTenantManageGateway},
		{"role:admin", ObjectUser, ActionView},
		{"role:admin", ObjectUser, ActionCreate},
		{"role:admin", ObjectUser, ActionUpdate},
		{"role:admin", ObjectInvoice, ActionInvoiceValidate},
		{"role:admin", ObjectInvoice, ActionInvoiceSubmit},
		{"role:admin", ObjectBuyer, ActionBuyerUpload},
	}

	for _, role := range []string{"role:operator", "role:admin"} {
		for _, object := range crudObjects {
			for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
				policies = append(policies, []string{role, object, action})
			}
		}
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
