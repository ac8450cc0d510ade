package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/repository"
)

// Aggregator reduces sales/payment/void records for a resolved range into the
// fixed Totals shape. All monetary reduction uses decimal arithmetic — no
// float accumulation, so cent-level drift cannot appear across large ranges.
type Aggregator struct {
	source repository.SalesSource
}

func NewAggregator(source repository.SalesSource) *Aggregator {
	return &Aggregator{source: source}
}

// Aggregate reads all three record kinds against the same fixed window and
// reduces them. Any source failure aborts the whole report; partial totals are
// never returned. Drawer totals are not populated here — see ApplyDrawer.
func (a *Aggregator) Aggregate(ctx context.Context, registerCode string, rng ReportRange) (model.Totals, error) {
	var t model.Totals

	sales, err := a.source.SalesInRange(ctx, registerCode, rng.Start, rng.End)
	if err != nil {
		return model.Totals{}, fmt.Errorf("%w: sales: %v", ErrSourceUnavailable, err)
	}
	payments, err := a.source.PaymentsInRange(ctx, registerCode, rng.Start, rng.End)
	if err != nil {
		return model.Totals{}, fmt.Errorf("%w: payments: %v", ErrSourceUnavailable, err)
	}
	voids, err := a.source.VoidsInRange(ctx, registerCode, rng.Start, rng.End)
	if err != nil {
		return model.Totals{}, fmt.Errorf("%w: voids: %v", ErrSourceUnavailable, err)
	}

	for _, s := range sales {
		t.Sales.Count++
		t.Sales.Subtotal = t.Sales.Subtotal.Add(s.Subtotal)
		t.Sales.Tax = t.Sales.Tax.Add(s.Tax)
		t.Sales.Discount = t.Sales.Discount.Add(s.Discount)
		t.Sales.Total = t.Sales.Total.Add(s.Total)
		t.Sales.AmountPaid = t.Sales.AmountPaid.Add(s.AmountPaid)
		t.Sales.ChangeGiven = t.Sales.ChangeGiven.Add(s.ChangeGiven)
	}

	byMethod := make(map[string]*model.PaymentTotals)
	for _, p := range payments {
		entry, ok := byMethod[p.Method]
		if !ok {
			entry = &model.PaymentTotals{Method: p.Method}
			byMethod[p.Method] = entry
		}
		entry.Count++
		entry.TotalAmount = entry.TotalAmount.Add(p.Amount)
		entry.PaidAmount = entry.PaidAmount.Add(p.PaidAmount)
	}
	// Deterministic order: repeated reports over unchanged data serialize
	// byte-identically.
	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		t.Payments = append(t.Payments, *byMethod[m])
	}

	for _, v := range voids {
		t.Voids.Count++
		t.Voids.Total = t.Voids.Total.Add(v.Amount)
	}

	return t, nil
}

// ApplyDrawer fills in drawer reconciliation for the session in scope:
// expected_drawer_cash = opening_amount + cash_received - change_given.
// Cash received is the tendered amount of cash payment legs in range.
func ApplyDrawer(t *model.Totals, openingAmount decimal.Decimal) {
	var cashReceived decimal.Decimal
	for _, p := range t.Payments {
		if p.Method == model.MethodCash {
			cashReceived = cashReceived.Add(p.PaidAmount)
		}
	}
	t.Drawer = &model.DrawerTotals{
		CashReceived:       cashReceived,
		ChangeGiven:        t.Sales.ChangeGiven,
		ExpectedDrawerCash: openingAmount.Add(cashReceived).Sub(t.Sales.ChangeGiven),
	}
}
