package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/lineitem"
)

// Buyer is a customer record scoped to one tenant. NTNCNIC is unique per
// tenant; registration type drives the further-tax rule on invoices.
type Buyer struct {
	ID               snowflake.ID              `gorm:"primaryKey" json:"id"`
	TenantID         snowflake.ID              `gorm:"not null;uniqueIndex:ux_buyers_tenant_ntn" json:"tenant_id"`
	NTNCNIC          string                    `gorm:"column:ntn_cnic;not null;uniqueIndex:ux_buyers_tenant_ntn" json:"ntn_cnic"`
	BusinessName     string                    `gorm:"not null" json:"business_name"`
	ProvinceCode     string                    `gorm:"not null" json:"province_code"`
	Address          string                    `json:"address"`
	RegistrationType lineitem.RegistrationType `gorm:"not null;default:Unregistered" json:"registration_type"`
	CreatedAt        time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time                 `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
