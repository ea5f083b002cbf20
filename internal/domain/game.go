package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Допустимые значения сложности для лидерборда
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

func ValidDifficulty(d string) bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type GameSession struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	GameState   datatypes.JSON `gorm:"type:jsonb"` // Состояние игры как есть (уровень, позиции и т.д.)
	Score       int            `gorm:"default:0"`
	Level       int            `gorm:"default:1"`
	TimePlayed  int64          `gorm:"default:0"` // Секунды
	IsCompleted bool           `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type LeaderboardEntry struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`
	User   User      `gorm:"foreignKey:UserID"`

	Score int `gorm:"not null"`
	// Rank хранится как прислали, сервер его не пересчитывает
	Rank         int       `gorm:"not null"`
	Difficulty   string    `gorm:"size:10;index"`
	DateAchieved time.Time `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Achievement struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"size:100;not null"`
	Description string
	AchievedAt  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
