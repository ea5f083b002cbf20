package handlers

import (
	"encoding/json"
	"time"

	"arcade/internal/domain"
)

// Транспортные представления. Поля отдаем в snake_case,
// для профиля и лидерборда вкладываем краткую карточку юзера.

type userSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type profileResponse struct {
	User        userSummary `json:"user"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	Bio         string      `json:"bio"`
	DateOfBirth *string     `json:"date_of_birth"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type sessionResponse struct {
	ID          string          `json:"id"`
	GameState   json.RawMessage `json:"game_state"`
	Score       int             `json:"score"`
	Level       int             `json:"level"`
	TimePlayed  int64           `json:"time_played"`
	IsCompleted bool            `json:"is_completed"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type leaderboardResponse struct {
	ID           string      `json:"id"`
	User         userSummary `json:"user"`
	Score        int         `json:"score"`
	Rank         int         `json:"rank"`
	Difficulty   string      `json:"difficulty"`
	DateAchieved time.Time   `json:"date_achieved"`
}

type achievementResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AchievedAt  time.Time `json:"achieved_at"`
}

func newUserSummary(u *domain.User) userSummary {
	return userSummary{ID: u.ID.String(), Username: u.Username, Email: u.Email}
}

func newProfileResponse(u *domain.User, p *domain.Profile) profileResponse {
	resp := profileResponse{
		User:      newUserSummary(u),
		AvatarURL: p.AvatarURL,
		Bio:       p.Bio,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.DateOfBirth != nil {
		dob := p.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	return resp
}

func newSessionResponse(s *domain.GameSession) sessionResponse {
	state := json.RawMessage(s.GameState)
	if len(state) == 0 {
		state = json.RawMessage("null")
	}
	return sessionResponse{
		ID:          s.ID.String(),
		GameState:   state,
		Score:       s.Score,
		Level:       s.Level,
		TimePlayed:  s.TimePlayed,
		IsCompleted: s.IsCompleted,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func newLeaderboardResponse(e *domain.LeaderboardEntry) leaderboardResponse {
	return leaderboardResponse{
		ID:           e.ID.String(),
		User:         newUserSummary(&e.User),
		Score:        e.Score,
		Rank:         e.Rank,
		Difficulty:   e.Difficulty,
		DateAchieved: e.DateAchieved,
	}
}

func newAchievementResponse(a *domain.Achievement) achievementResponse {
	return achievementResponse{
		ID:          a.ID.String(),
		Name:        a.Name,
		Description: a.Description,
		AchievedAt:  a.AchievedAt,
	}
}
