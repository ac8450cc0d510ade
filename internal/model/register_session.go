package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session status values.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// RegisterSession is the bounded period during which a cash drawer is open for
// operator accountability. At most one open session may exist per register code;
// the invariant is enforced by SessionService and backed by a partial unique
// index on (register_code) WHERE status = 'open'.
//
// Sessions are created by open, mutated exactly once by close, never deleted.
// The JSON shape below is a stable export contract consumed by printing,
// export, and audit-review tooling — do not rename fields.
type RegisterSession struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RegisterCode string    `gorm:"type:varchar(30);not null;index" json:"register_code"`
	Status       string    `gorm:"type:varchar(10);not null;default:'open'" json:"status"`
	OpenedAt     time.Time `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time `json:"closed_at"`
	// OpeningAmount is the counted float placed in the drawer at open time.
	OpeningAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"opening_amount"`
	// ClosingAmount is the operator-counted cash at close; nil when the caller
	// defers counting.
	ClosingAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_amount"`
	OperatorRef   uuid.UUID        `gorm:"type:uuid;not null" json:"operator_ref"`
	NoteOpen      *string          `json:"note_open,omitempty"`
	NoteClose     *string          `json:"note_close,omitempty"`
}

func (RegisterSession) TableName() string { return "register_sessions" }

// IsOpen reports whether the session is still accepting activity.
func (s *RegisterSession) IsOpen() bool { return s.Status == SessionOpen }
