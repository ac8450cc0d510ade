package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/repository"
)

// SalesFeed is an HTTP implementation of repository.SalesSource against the
// sales service API, for deployments where this service has no direct access
// to the sales tables. All calls go through a circuit breaker so a downed
// sales service fast-fails instead of stalling report generation.
type SalesFeed struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

var _ repository.SalesSource = (*SalesFeed)(nil)

func NewSalesFeed(baseURL string, cb *CircuitBreaker) *SalesFeed {
	return &SalesFeed{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cb:         cb,
	}
}

// Breaker exposes the circuit breaker for health reporting.
func (f *SalesFeed) Breaker() *CircuitBreaker { return f.cb }

func (f *SalesFeed) SalesInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.SaleRecord, error) {
	var rows []model.SaleRecord
	if err := f.fetch(ctx, "/v1/sales", registerCode, start, end, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *SalesFeed) PaymentsInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.PaymentRecord, error) {
	var rows []model.PaymentRecord
	if err := f.fetch(ctx, "/v1/payments", registerCode, start, end, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *SalesFeed) VoidsInRange(ctx context.Context, registerCode string, start, end time.Time) ([]model.VoidRecord, error) {
	var rows []model.VoidRecord
	if err := f.fetch(ctx, "/v1/voids", registerCode, start, end, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *SalesFeed) fetch(ctx context.Context, path, registerCode string, start, end time.Time, dest interface{}) error {
	q := url.Values{}
	q.Set("register", registerCode)
	q.Set("start", start.UTC().Format(time.RFC3339Nano))
	q.Set("end", end.UTC().Format(time.RFC3339Nano))
	fullURL := f.baseURL + path + "?" + q.Encode()

	return f.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("salesfeed: create request: %w", err)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("salesfeed: unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("salesfeed: %s returned %d", path, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("salesfeed: decode response: %w", err)
		}
		return nil
	})
}
