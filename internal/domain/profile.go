package domain

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	UserID      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AvatarURL   string     `gorm:"size:255"`
	Bio         string     `gorm:"size:500"` // Экранируется от XSS перед записью
	DateOfBirth *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
