package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	gatewaydomain "github.com/taxops/fbrgate/internal/gateway/domain"
)

// Tenant is one registered seller: the business identity printed on
// invoices plus its gateway enrollment.
type Tenant struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	NTNCNIC      string       `gorm:"column:ntn_cnic;not null;uniqueIndex" json:"ntn_cnic"`
	BusinessName string       `gorm:"not null" json:"business_name"`
	ProvinceCode string       `gorm:"not null" json:"province_code"`
	Address      string       `json:"address"`

	// Gateway enrollment. Sandbox until the seller completes production
	// onboarding with the tax authority.
	GatewayEnvironment  string `gorm:"not null;default:sandbox" json:"gateway_environment"`
	GatewayClientID     string `json:"-"`
	GatewayClientSecret string `json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// GatewayCredentials shapes the tenant's enrollment for the gateway
// client.
func (t *Tenant) GatewayCredentials() gatewaydomain.Credentials {
	return gatewaydomain.Credentials{
		TenantID:     t.ID,
		Environment:  t.GatewayEnvironment,
		ClientID:     t.GatewayClientID,
		ClientSecret: t.GatewayClientSecret,
	}
}
