package tests

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/repository"
	"github.com/Waesta/Wapos-sub001/internal/service"
)

// ── In-memory SessionRepository ──────────────────────────────────────────────

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]model.RegisterSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]model.RegisterSession)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *model.RegisterSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) FindOpenByRegister(_ context.Context, registerCode string) (*model.RegisterSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RegisterCode == registerCode && s.Status == model.SessionOpen {
			found := s
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := s
	return &found, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, s *model.RegisterSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeSessionRepo) List(_ context.Context, registerCode string, limit int) ([]model.RegisterSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.RegisterSession
	for _, s := range r.sessions {
		if s.RegisterCode == registerCode {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OpenedAt.After(all[j].OpenedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

// ── In-memory ClosureRepository ──────────────────────────────────────────────

type fakeClosureRepo struct {
	mu       sync.Mutex
	closures []model.ReportClosure
	// baselineErr simulates a corrupt ledger read.
	baselineErr error
}

func newFakeClosureRepo() *fakeClosureRepo { return &fakeClosureRepo{} }

func (r *fakeClosureRepo) Append(_ context.Context, c *model.ReportClosure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.closures = append(r.closures, *c)
	return nil
}

func (r *fakeClosureRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ReportClosure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.closures {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClosureRepo) LastZRangeEnd(_ context.Context, registerCode string) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.baselineErr != nil {
		return nil, r.baselineErr
	}
	var last *time.Time
	for _, c := range r.closures {
		if c.RegisterCode == registerCode && c.ClosureType == model.ClosureZ && c.ResetApplied {
			end := c.RangeEnd
			if last == nil || end.After(*last) {
				last = &end
			}
		}
	}
	return last, nil
}

func (r *fakeClosureRepo) List(_ context.Context, registerCode string, limit int) ([]model.ReportClosure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.ReportClosure
	for _, c := range r.closures {
		if c.RegisterCode == registerCode {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].GeneratedAt.After(all[j].GeneratedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeClosureRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.closures)
}

var _ repository.ClosureRepository = (*fakeClosureRepo)(nil)

// ── In-memory SalesSource ────────────────────────────────────────────────────

type fakeSalesSource struct {
	mu       sync.Mutex
	sales    []model.SaleRecord
	payments []model.PaymentRecord
	voids    []model.VoidRecord
	// failErr makes every query fail, simulating a downed collaborator.
	failErr error
}

func newFakeSalesSource() *fakeSalesSource { return &fakeSalesSource{} }

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func (r *fakeSalesSource) SalesInRange(_ context.Context, registerCode string, start, end time.Time) ([]model.SaleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	var rows []model.SaleRecord
	for _, s := range r.sales {
		if s.RegisterCode == registerCode && inRange(s.OccurredAt, start, end) {
			rows = append(rows, s)
		}
	}
	return rows, nil
}

func (r *fakeSalesSource) PaymentsInRange(_ context.Context, registerCode string, start, end time.Time) ([]model.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	var rows []model.PaymentRecord
	for _, p := range r.payments {
		if p.RegisterCode == registerCode && inRange(p.OccurredAt, start, end) {
			rows = append(rows, p)
		}
	}
	return rows, nil
}

func (r *fakeSalesSource) VoidsInRange(_ context.Context, registerCode string, start, end time.Time) ([]model.VoidRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	var rows []model.VoidRecord
	for _, v := range r.voids {
		if v.RegisterCode == registerCode && inRange(v.OccurredAt, start, end) {
			rows = append(rows, v)
		}
	}
	return rows, nil
}

var _ repository.SalesSource = (*fakeSalesSource)(nil)

// addCashSale appends a sale and its single cash payment leg.
func (r *fakeSalesSource) addCashSale(registerCode string, subtotal, tax, discount, total, paid, change string, at time.Time) {
	r.addSale(registerCode, model.MethodCash, subtotal, tax, discount, total, paid, change, at)
}

func (r *fakeSalesSource) addSale(registerCode, method string, subtotal, tax, discount, total, paid, change string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sale := model.SaleRecord{
		ID:           uuid.New(),
		RegisterCode: registerCode,
		Subtotal:     dec(subtotal),
		Tax:          dec(tax),
		Discount:     dec(discount),
		Total:        dec(total),
		AmountPaid:   dec(paid),
		ChangeGiven:  dec(change),
		OccurredAt:   at,
	}
	r.sales = append(r.sales, sale)
	r.payments = append(r.payments, model.PaymentRecord{
		ID:           uuid.New(),
		SaleID:       sale.ID,
		RegisterCode: registerCode,
		Method:       method,
		Amount:       dec(total),
		PaidAmount:   dec(paid),
		OccurredAt:   at,
	})
}

func (r *fakeSalesSource) addVoid(registerCode, amount string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voids = append(r.voids, model.VoidRecord{
		ID:           uuid.New(),
		RegisterCode: registerCode,
		Amount:       dec(amount),
		OccurredAt:   at,
	})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Wiring helper ────────────────────────────────────────────────────────────

type env struct {
	sessions *fakeSessionRepo
	closures *fakeClosureRepo
	source   *fakeSalesSource

	sessionSvc service.SessionService
	reportSvc  service.ReportService
	resolver   *service.RangeResolver
	variance   *service.VarianceCalculator
}

func newEnv() *env {
	sessions := newFakeSessionRepo()
	closures := newFakeClosureRepo()
	source := newFakeSalesSource()

	agg := service.NewAggregator(source)
	resolver := service.NewRangeResolver(closures)
	variance := service.NewVarianceCalculator(agg)

	return &env{
		sessions:   sessions,
		closures:   closures,
		source:     source,
		sessionSvc: service.NewSessionService(sessions, variance),
		reportSvc:  service.NewReportService(sessions, closures, resolver, agg, nil),
		resolver:   resolver,
		variance:   variance,
	}
}
