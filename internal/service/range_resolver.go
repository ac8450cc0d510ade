package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/repository"
)

// ReportRange is the half-open [Start, End) aggregation window of a report.
type ReportRange struct {
	Start time.Time
	End   time.Time
}

// RangeResolver computes the window a report must cover. The baseline is the
// range_end of the last finalized Z closure; X/Y/Z all start there. Keeping
// this as its own component (rather than inlined ledger queries) lets the
// monotonicity property be tested in isolation from storage.
type RangeResolver struct {
	closures repository.ClosureRepository
	now      func() time.Time
}

func NewRangeResolver(closures repository.ClosureRepository) *RangeResolver {
	return &RangeResolver{closures: closures, now: time.Now}
}

// Resolve returns the aggregation window for the given closure type. The End
// timestamp is captured here, once, and reused by every downstream query of
// the aggregation — sales landing after this instant are excluded consistently.
// Y reports require an open session; X and Z never consult session state.
func (r *RangeResolver) Resolve(ctx context.Context, registerCode, closureType string, active *model.RegisterSession) (ReportRange, error) {
	if closureType == model.ClosureY && active == nil {
		return ReportRange{}, ErrNoActiveSession
	}

	end := r.now().UTC()

	baseline, err := r.closures.LastZRangeEnd(ctx, registerCode)
	if err != nil {
		return ReportRange{}, fmt.Errorf("%w: %v", ErrRangeComputation, err)
	}

	start := time.Unix(0, 0).UTC()
	if baseline != nil {
		start = baseline.UTC()
	}
	if start.After(end) {
		// A baseline in the future means a corrupt ledger or clock skew; refuse
		// to produce an inverted window.
		return ReportRange{}, fmt.Errorf("%w: baseline %s is after now %s", ErrRangeComputation, start, end)
	}

	return ReportRange{Start: start, End: end}, nil
}
