package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TransactionType is one entry of the FBR transaction-type reference list
// ("Goods at standard rate", "Electricity Supply to Retailers", ...).
type TransactionType struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"not null" json:"description"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// RateOption is one selectable rate for a transaction type. Label carries
// the raw rate text the tax authority publishes ("18%", "RS.700",
// "50/bill", "exempt"); the derivation engine parses it.
type RateOption struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	TransactionTypeID int64        `gorm:"not null;index" json:"transaction_type_id"`
	Label             string       `gorm:"not null" json:"label"`
	DisplayOrder      int          `gorm:"not null;default:0" json:"display_order"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SROSchedule is a statutory regulatory order schedule applicable to a
// rate option within one province.
type SROSchedule struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	RateOptionID snowflake.ID `gorm:"not null;index:idx_sro_schedules_option_province" json:"rate_option_id"`
	ProvinceCode string       `gorm:"not null;index:idx_sro_schedules_option_province" json:"province_code"`
	Serial       string       `gorm:"not null" json:"serial"`
	Description  string       `json:"description"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SROItem is one serial entry under an SRO schedule.
type SROItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ScheduleID  snowflake.ID `gorm:"not null;index" json:"schedule_id"`
	Serial      string       `gorm:"not null" json:"serial"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
