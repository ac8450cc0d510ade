package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods recognized by the drawer reconciliation. Only MethodCash
// affects expected drawer cash; the rest flow through the payments breakdown.
const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
	MethodVoucher  = "voucher"
)

// The types below are read-models over the wider sales-transaction engine.
// This service never writes them — the sales engine owns the tables and this
// core only aggregates rows whose OccurredAt falls inside a report range.

// SaleRecord is one completed sale as seen by the aggregator.
type SaleRecord struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RegisterCode string          `gorm:"type:varchar(30);not null;index" json:"register_code"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tax          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Discount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	ChangeGiven  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"change_given"`
	OccurredAt   time.Time       `gorm:"not null;index" json:"occurred_at"`
}

func (SaleRecord) TableName() string { return "sales" }

// PaymentRecord is one payment leg of a sale (a sale may carry several).
type PaymentRecord struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	RegisterCode string          `gorm:"type:varchar(30);not null;index" json:"register_code"`
	Method       string          `gorm:"type:varchar(20);not null" json:"method"`
	// Amount is the portion of the sale total settled by this leg; PaidAmount
	// is what was actually tendered (cash may exceed Amount, producing change).
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"paid_amount"`
	OccurredAt time.Time       `gorm:"not null;index" json:"occurred_at"`
}

func (PaymentRecord) TableName() string { return "sale_payments" }

// VoidRecord is one voided/cancelled transaction.
type VoidRecord struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RegisterCode string          `gorm:"type:varchar(30);not null;index" json:"register_code"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	OccurredAt   time.Time       `gorm:"not null;index" json:"occurred_at"`
}

func (VoidRecord) TableName() string { return "sale_voids" }
