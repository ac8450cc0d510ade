package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Waesta/Wapos-sub001/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"min=0"`
	Note          *string         `json:"note"`
}

type CloseSessionRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	// CountedAmount may be omitted when the operator defers the count; no
	// variance is computed in that case.
	CountedAmount *decimal.Decimal `json:"counted_amount"`
	Note          *string          `json:"note"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// VarianceResponse reports drawer reconciliation at close time.
// Positive delta = drawer over, negative = drawer short.
type VarianceResponse struct {
	Expected decimal.Decimal `json:"expected"`
	Counted  decimal.Decimal `json:"counted"`
	Delta    decimal.Decimal `json:"delta"`
}

type CloseSessionResponse struct {
	Session  *model.RegisterSession `json:"session"`
	Variance *VarianceResponse      `json:"variance,omitempty"`
}

type SessionListResponse struct {
	Data  []model.RegisterSession `json:"data"`
	Limit int                     `json:"limit"`
}
