package repository

import (
	"context"
	"errors"

	"arcade/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.GameSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// Все выборки фильтруются по владельцу: чужие сессии для вызывающего не существуют

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.GameSession, error) {
	var sessions []domain.GameSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.GameSession, error) {
	var session domain.GameSession
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Latest возвращает последнюю созданную сессию (именно по created_at, не по счету)
func (r *SessionRepository) Latest(ctx context.Context, userID uuid.UUID) (*domain.GameSession, error) {
	var session domain.GameSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Update(ctx context.Context, userID, id uuid.UUID, updates map[string]interface{}) (*domain.GameSession, error) {
	result := r.db.WithContext(ctx).Model(&domain.GameSession{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return r.GetByID(ctx, userID, id)
}

func (r *SessionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.GameSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
