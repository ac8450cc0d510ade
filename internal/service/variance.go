package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Waesta/Wapos-sub001/internal/model"
)

// VarianceResult compares operator-counted cash against the computed drawer
// expectation. Delta = Counted - Expected: positive means the drawer is over,
// negative means short.
type VarianceResult struct {
	Expected decimal.Decimal
	Counted  decimal.Decimal
	Delta    decimal.Decimal
}

// VarianceCalculator is a pure reconciliation step: it has no side effects and
// does not require any closure to exist.
type VarianceCalculator struct {
	agg *Aggregator
	now func() time.Time
}

func NewVarianceCalculator(agg *Aggregator) *VarianceCalculator {
	return &VarianceCalculator{agg: agg, now: time.Now}
}

// Variance aggregates the session's own open window [opened_at, closed_at|now)
// and reconciles counted cash against it.
func (v *VarianceCalculator) Variance(ctx context.Context, session *model.RegisterSession, counted decimal.Decimal) (VarianceResult, error) {
	end := v.now().UTC()
	if session.ClosedAt != nil {
		end = session.ClosedAt.UTC()
	}

	totals, err := v.agg.Aggregate(ctx, session.RegisterCode, ReportRange{Start: session.OpenedAt.UTC(), End: end})
	if err != nil {
		return VarianceResult{}, err
	}
	ApplyDrawer(&totals, session.OpeningAmount)

	expected := totals.Drawer.ExpectedDrawerCash
	return VarianceResult{
		Expected: expected,
		Counted:  counted,
		Delta:    counted.Sub(expected),
	}, nil
}
