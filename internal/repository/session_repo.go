package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Waesta/Wapos-sub001/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.RegisterSession) error
	// FindOpenByRegister returns gorm.ErrRecordNotFound when no session is open.
	FindOpenByRegister(ctx context.Context, registerCode string) (*model.RegisterSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error)
	Update(ctx context.Context, s *model.RegisterSession) error
	List(ctx context.Context, registerCode string, limit int) ([]model.RegisterSession, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) Create(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) FindOpenByRegister(ctx context.Context, registerCode string) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).
		Where("register_code = ? AND status = ?", registerCode, model.SessionOpen).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Update(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sessionRepo) List(ctx context.Context, registerCode string, limit int) ([]model.RegisterSession, error) {
	var sessions []model.RegisterSession
	err := r.db.WithContext(ctx).
		Where("register_code = ?", registerCode).
		Order("opened_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
