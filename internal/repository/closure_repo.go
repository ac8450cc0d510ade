package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Waesta/Wapos-sub001/internal/model"
)

// ClosureRepository is the persistence contract of the closure ledger.
// The ledger is append-only: there is deliberately no Update or Delete.
type ClosureRepository interface {
	Append(ctx context.Context, c *model.ReportClosure) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReportClosure, error)
	// LastZRangeEnd returns the range_end of the most recent finalized Z closure
	// for the register, or nil when none exists. It is the X/Y/Z baseline: the
	// baseline advance of a finalized Z is the closure insert itself, so a
	// crash between "write closure" and "advance baseline" cannot occur.
	LastZRangeEnd(ctx context.Context, registerCode string) (*time.Time, error)
	List(ctx context.Context, registerCode string, limit int) ([]model.ReportClosure, error)
}

type closureRepo struct{ db *gorm.DB }

func NewClosureRepository(db *gorm.DB) ClosureRepository { return &closureRepo{db: db} }

func (r *closureRepo) Append(ctx context.Context, c *model.ReportClosure) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *closureRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ReportClosure, error) {
	var c model.ReportClosure
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *closureRepo) LastZRangeEnd(ctx context.Context, registerCode string) (*time.Time, error) {
	var c model.ReportClosure
	err := r.db.WithContext(ctx).
		Where("register_code = ? AND closure_type = ? AND reset_applied = true", registerCode, model.ClosureZ).
		Order("range_end DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	end := c.RangeEnd
	return &end, nil
}

func (r *closureRepo) List(ctx context.Context, registerCode string, limit int) ([]model.ReportClosure, error) {
	var closures []model.ReportClosure
	err := r.db.WithContext(ctx).
		Where("register_code = ?", registerCode).
		Order("generated_at DESC").
		Limit(limit).
		Find(&closures).Error
	return closures, err
}
