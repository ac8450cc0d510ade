package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Waesta/Wapos-sub001/internal/dto"
	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/repository"
	"github.com/Waesta/Wapos-sub001/internal/worker"
)

var errFinalizeNonZ = errors.New("finalize only applies to z reports")

// ReportService orchestrates report generation: RangeResolver computes the
// window, Aggregator reduces the records, and for persisted reports the
// closure ledger receives the immutable audit record.
//
// Persistence rules: X reports and non-finalized Z previews are transient —
// returned to the caller, never written. Y reports and finalized Z reports are
// appended to the ledger. Only a finalized Z advances the baseline, and it
// does so by the very act of being appended (see ClosureRepository), so a
// failed finalize is indistinguishable from never having been called.
type ReportService interface {
	Generate(ctx context.Context, registerCode string, req dto.GenerateReportRequest) (*model.ReportClosure, error)
	ListClosures(ctx context.Context, registerCode string, limit int) ([]model.ReportClosure, error)
}

type reportService struct {
	sessions   repository.SessionRepository
	closures   repository.ClosureRepository
	resolver   *RangeResolver
	agg        *Aggregator
	dispatcher *worker.Dispatcher // nil disables closure export
	locks      *registerLocks
	now        func() time.Time
}

func NewReportService(
	sessions repository.SessionRepository,
	closures repository.ClosureRepository,
	resolver *RangeResolver,
	agg *Aggregator,
	dispatcher *worker.Dispatcher,
) ReportService {
	return &reportService{
		sessions:   sessions,
		closures:   closures,
		resolver:   resolver,
		agg:        agg,
		dispatcher: dispatcher,
		locks:      newRegisterLocks(),
		now:        time.Now,
	}
}

func (s *reportService) Generate(ctx context.Context, registerCode string, req dto.GenerateReportRequest) (*model.ReportClosure, error) {
	if req.Finalize && req.ClosureType != model.ClosureZ {
		return nil, errFinalizeNonZ
	}

	if req.ClosureType == model.ClosureZ && req.Finalize {
		// Serialize finalizing Z calls per register: two concurrent finalizes
		// must not produce closures covering overlapping ranges.
		mu := s.locks.get(registerCode)
		mu.Lock()
		defer mu.Unlock()
	}

	// X reports never consult session state; Y and Z attach the active session
	// when one exists (Y requires it — enforced by the resolver).
	var active *model.RegisterSession
	if req.ClosureType != model.ClosureX {
		found, err := s.sessions.FindOpenByRegister(ctx, registerCode)
		switch {
		case err == nil:
			active = found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	rng, err := s.resolver.Resolve(ctx, registerCode, req.ClosureType, active)
	if err != nil {
		return nil, err
	}

	totals, err := s.agg.Aggregate(ctx, registerCode, rng)
	if err != nil {
		// Whole report aborts — no partial totals are ever persisted.
		return nil, err
	}

	closure := &model.ReportClosure{
		ID:           uuid.New(),
		RegisterCode: registerCode,
		ClosureType:  req.ClosureType,
		GeneratedAt:  s.now().UTC(),
		RangeStart:   rng.Start,
		RangeEnd:     rng.End,
		Totals:       totals,
		ResetApplied: req.ClosureType == model.ClosureZ && req.Finalize,
	}
	if active != nil {
		id := active.ID
		closure.SessionID = &id
		ApplyDrawer(&closure.Totals, active.OpeningAmount)
	}

	persist := req.ClosureType == model.ClosureY || closure.ResetApplied
	if persist {
		if err := s.closures.Append(ctx, closure); err != nil {
			return nil, err
		}
	}

	if closure.ResetApplied && s.dispatcher != nil {
		// Export is best-effort and strictly after the committed closure: a
		// failed enqueue never unwinds the audit record.
		if err := s.dispatcher.EnqueueClosureExport(ctx, worker.ExportJobPayload{
			ClosureID:    closure.ID.String(),
			RegisterCode: registerCode,
		}); err != nil {
			log.Error().Err(err).Str("closure_id", closure.ID.String()).Msg("failed to enqueue closure export")
		}
	}

	return closure, nil
}

func (s *reportService) ListClosures(ctx context.Context, registerCode string, limit int) ([]model.ReportClosure, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.closures.List(ctx, registerCode, limit)
}
