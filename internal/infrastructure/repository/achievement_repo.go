package repository

import (
	"context"

	"arcade/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Ачивки append-only: ни апдейта, ни удаления здесь нет намеренно

func (r *AchievementRepository) Create(ctx context.Context, a *domain.Achievement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AchievementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Achievement, error) {
	var achievements []domain.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("achieved_at desc").
		Find(&achievements).Error
	return achievements, err
}
