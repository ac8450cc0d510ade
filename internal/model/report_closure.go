package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Closure types.
// X: repeatable snapshot since the last finalized Z, session-independent.
// Y: like X but scoped to (and requiring) an open session.
// Z: end-of-period report; when finalized it commits the audit record and
// advances the baseline so subsequent reports count from zero.
const (
	ClosureX = "x"
	ClosureY = "y"
	ClosureZ = "z"
)

// SalesTotals aggregates sale rows over a report range.
// Invariant: Total = Subtotal + Tax - Discount, exactly.
type SalesTotals struct {
	Count       int64           `json:"count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	ChangeGiven decimal.Decimal `json:"change_given"`
}

// PaymentTotals is one entry per distinct payment method observed in range.
// Methods with zero activity are omitted, not zero-filled.
type PaymentTotals struct {
	Method      string          `json:"method"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// VoidTotals aggregates voided transactions over a report range.
type VoidTotals struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// DrawerTotals reconciles physical cash flow for the session in scope.
// ExpectedDrawerCash = opening_amount + cash_received - change_given.
// Only present when a session is in scope (Y/Z); omitted for session-less X.
type DrawerTotals struct {
	CashReceived       decimal.Decimal `json:"cash_received"`
	ChangeGiven        decimal.Decimal `json:"change_given"`
	ExpectedDrawerCash decimal.Decimal `json:"expected_drawer_cash"`
}

// Totals is the fixed-shape reduction of all sales/payment/void activity in a
// report range. It is embedded verbatim in every ReportClosure and returned
// live for transient X reports.
type Totals struct {
	Sales    SalesTotals     `json:"sales"`
	Payments []PaymentTotals `json:"payments"`
	Voids    VoidTotals      `json:"voids"`
	Drawer   *DrawerTotals   `json:"drawer,omitempty"`
}

// ReportClosure is an immutable audit record produced by a report generation.
// Closures are append-only: never updated, never deleted. A finalized Z closure
// (ResetApplied = true) is what advances the aggregation baseline — the next
// report's range starts at this closure's RangeEnd.
type ReportClosure struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RegisterCode string    `gorm:"type:varchar(30);not null;index" json:"register_code"`
	ClosureType  string    `gorm:"type:varchar(1);not null" json:"closure_type"`
	GeneratedAt  time.Time `gorm:"not null" json:"generated_at"`
	// [RangeStart, RangeEnd) — half-open, end exclusive.
	RangeStart   time.Time  `gorm:"not null" json:"range_start"`
	RangeEnd     time.Time  `gorm:"not null;index" json:"range_end"`
	Totals       Totals     `gorm:"serializer:json" json:"totals"`
	ResetApplied bool       `gorm:"not null;default:false" json:"reset_applied"`
	SessionID    *uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
}

func (ReportClosure) TableName() string { return "report_closures" }
