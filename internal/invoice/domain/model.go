// Package domain contains the invoice aggregate and its lifecycle
// contract: drafts are edited and derived locally, validated against the
// FBR gateway, then submitted for an externally issued invoice number.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/lineitem"
	"gorm.io/datatypes"
)

// Status is the persisted invoice lifecycle state. Transitions are
// one-directional: Draft -> Validated -> Submitted. A failed submission
// leaves the invoice Validated; editing a validated draft demotes it to
// Draft.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusValidated Status = "VALIDATED"
	StatusSubmitted Status = "SUBMITTED"
)

// Invoice is one tax invoice with a buyer snapshot frozen at selection
// time, so later buyer edits do not rewrite issued documents.
type Invoice struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	BuyerID  snowflake.ID `gorm:"not null;index" json:"buyer_id"`

	BuyerNTNCNIC          string                    `gorm:"column:buyer_ntn_cnic;not null" json:"buyer_ntn_cnic"`
	BuyerBusinessName     string                    `gorm:"not null" json:"buyer_business_name"`
	BuyerProvinceCode     string                    `gorm:"not null" json:"buyer_province_code"`
	BuyerAddress          string                    `json:"buyer_address"`
	BuyerRegistrationType lineitem.RegistrationType `gorm:"not null" json:"buyer_registration_type"`

	InvoiceType       string `gorm:"not null;default:'Sale Invoice'" json:"invoice_type"`
	InvoiceDate       string `gorm:"not null" json:"invoice_date"`
	ReferenceNo       string `gorm:"not null" json:"reference_no"`
	ScenarioID        string `json:"scenario_id,omitempty"`
	TransactionTypeID int64  `json:"transaction_type_id"`

	Status           Status         `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	FBRInvoiceNumber string         `gorm:"column:fbr_invoice_number" json:"fbr_invoice_number,omitempty"`
	RawResponse      datatypes.JSON `gorm:"column:raw_gateway_response" json:"-"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one persisted line; the embedded LineItem carries the
// derived monetary fields and the override set.
type InvoiceItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	SortOrder int          `gorm:"not null;default:0" json:"sort_order"`

	lineitem.LineItem `gorm:"embedded"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// DraftPayload is the gateway payload snapshot frozen at validation time.
// Submission replays exactly what was validated; the row is removed
// best-effort after a successful submission.
type DraftPayload struct {
	InvoiceID snowflake.ID   `gorm:"primaryKey" json:"invoice_id"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DraftPayload) TableName() string { return "invoice_draft_payloads" }
