package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrSessionNotFound   = errors.New("session not found")
	ErrProfileNotFound   = errors.New("profile not found")
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username string    `gorm:"uniqueIndex;not null;size:50"`
	Email    string    `gorm:"not null;size:100"`
	Password string    `gorm:"not null"`

	// Связи нужны, чтобы удаление юзера каскадом чистило все его данные
	Profile      Profile            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Sessions     []GameSession      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Leaderboard  []LeaderboardEntry `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Achievements []Achievement      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
