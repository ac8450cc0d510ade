package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Waesta/Wapos-sub001/internal/dto"
	"github.com/Waesta/Wapos-sub001/internal/model"
	"github.com/Waesta/Wapos-sub001/internal/repository"
)

// SessionService owns the register session lifecycle. Open and Close run under
// a per-register mutex so the single-open-session invariant holds against
// concurrent callers; the partial unique index on register_sessions backs the
// same invariant across processes.
type SessionService interface {
	Open(ctx context.Context, registerCode string, operator uuid.UUID, req dto.OpenSessionRequest) (*model.RegisterSession, error)
	Close(ctx context.Context, registerCode string, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error)
	// Active returns (nil, nil) when no session is open.
	Active(ctx context.Context, registerCode string) (*model.RegisterSession, error)
	List(ctx context.Context, registerCode string, limit int) ([]model.RegisterSession, error)
}

type sessionService struct {
	repo     repository.SessionRepository
	variance *VarianceCalculator
	locks    *registerLocks
	now      func() time.Time
}

func NewSessionService(repo repository.SessionRepository, variance *VarianceCalculator) SessionService {
	return &sessionService{
		repo:     repo,
		variance: variance,
		locks:    newRegisterLocks(),
		now:      time.Now,
	}
}

func (s *sessionService) Open(ctx context.Context, registerCode string, operator uuid.UUID, req dto.OpenSessionRequest) (*model.RegisterSession, error) {
	if req.OpeningAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	mu := s.locks.get(registerCode)
	mu.Lock()
	defer mu.Unlock()

	_, err := s.repo.FindOpenByRegister(ctx, registerCode)
	switch {
	case err == nil:
		return nil, ErrSessionAlreadyOpen
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	session := &model.RegisterSession{
		RegisterCode:  registerCode,
		Status:        model.SessionOpen,
		OpenedAt:      s.now().UTC(),
		OpeningAmount: req.OpeningAmount,
		OperatorRef:   operator,
		NoteOpen:      req.Note,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Close(ctx context.Context, registerCode string, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error) {
	if req.CountedAmount != nil && req.CountedAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, ErrNoActiveSession
	}

	mu := s.locks.get(registerCode)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.repo.FindByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}
	if session.RegisterCode != registerCode {
		return nil, ErrNoActiveSession
	}
	if !session.IsOpen() {
		// Double-close is a workflow mistake, not a silent success.
		return nil, ErrSessionAlreadyClosed
	}

	// Variance is computed before the mutation so a failed aggregation leaves
	// the session open and retryable.
	var varianceResp *dto.VarianceResponse
	if req.CountedAmount != nil {
		result, err := s.variance.Variance(ctx, session, *req.CountedAmount)
		if err != nil {
			return nil, err
		}
		varianceResp = &dto.VarianceResponse{
			Expected: result.Expected,
			Counted:  result.Counted,
			Delta:    result.Delta,
		}
	}

	closedAt := s.now().UTC()
	session.Status = model.SessionClosed
	session.ClosedAt = &closedAt
	session.ClosingAmount = req.CountedAmount
	session.NoteClose = req.Note

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CloseSessionResponse{Session: session, Variance: varianceResp}, nil
}

func (s *sessionService) Active(ctx context.Context, registerCode string) (*model.RegisterSession, error) {
	session, err := s.repo.FindOpenByRegister(ctx, registerCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, registerCode string, limit int) ([]model.RegisterSession, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, registerCode, limit)
}
