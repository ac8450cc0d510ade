package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Waesta/Wapos-sub001/internal/model"
)

// SalesSource is the read-only collaborator contract over the wider
// sales-transaction engine. All three queries take the same half-open
// [start, end) window; callers capture the upper bound once before querying so
// rows landing mid-aggregation are excluded consistently from every breakdown.
type SalesSource interface {
	SalesInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.SaleRecord, error)
	PaymentsInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.PaymentRecord, error)
	VoidsInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.VoidRecord, error)
}

// dbSalesSource reads the sales engine's tables directly. This service holds
// no write path to them.
type dbSalesSource struct{ db *gorm.DB }

func NewDBSalesSource(db *gorm.DB) SalesSource { return &dbSalesSource{db: db} }

func (r *dbSalesSource) SalesInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.SaleRecord, error) {
	var rows []model.SaleRecord
	err := r.db.WithContext(ctx).
		Where("register_code = ? AND occurred_at >= ? AND occurred_at < ?", registerCode, start, end).
		Order("occurred_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *dbSalesSource) PaymentsInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.PaymentRecord, error) {
	var rows []model.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("register_code = ? AND occurred_at >= ? AND occurred_at < ?", registerCode, start, end).
		Order("occurred_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *dbSalesSource) VoidsInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.VoidRecord, error) {
	var rows []model.VoidRecord
	err := r.db.WithContext(ctx).
		Where("register_code = ? AND occurred_at >= ? AND occurred_at < ?", registerCode, start, end).
		Order("occurred_at ASC").
		Find(&rows).Error
	return rows, err
}
