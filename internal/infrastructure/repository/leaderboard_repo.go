package repository

import (
	"context"
	"time"

	"arcade/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) Create(ctx context.Context, entry *domain.LeaderboardEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List отдает таблицу рекордов по убыванию счета.
// Фильтры опциональны и комбинируются: точное совпадение сложности
// и нижняя граница (включительно) по дате рекорда.
func (r *LeaderboardRepository) List(ctx context.Context, difficulty string, dateFrom *time.Time, limit, offset int) ([]domain.LeaderboardEntry, error) {
	query := r.db.WithContext(ctx).Model(&domain.LeaderboardEntry{})
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if dateFrom != nil {
		query = query.Where("date_achieved >= ?", *dateFrom)
	}

	var entries []domain.LeaderboardEntry
	err := query.
		Preload("User").
		Order("score desc").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *LeaderboardRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LeaderboardEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
