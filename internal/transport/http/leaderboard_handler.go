package handlers

import (
	"net/http"
	"strconv"
	"time"

	"arcade/internal/domain"
	"arcade/internal/infrastructure/repository"
	"arcade/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 200
)

type LeaderboardHandler struct {
	leaderboardRepo *repository.LeaderboardRepository
}

func NewLeaderboardHandler(lr *repository.LeaderboardRepository) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardRepo: lr}
}

type submitScoreReq struct {
	// Ноль — валидный счет, поэтому без required
	Score      int    `json:"score" binding:"min=0"`
	Rank       int    `json:"rank"`
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
}

// GET /api/leaderboard?difficulty=&date_from=&limit=&offset=
// Открыт без токена, гости тоже могут смотреть рекорды
func (h *LeaderboardHandler) List(c *gin.Context) {
	difficulty := c.Query("difficulty")
	if difficulty != "" && !domain.ValidDifficulty(difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be easy, medium or hard"})
		return
	}

	var dateFrom *time.Time
	if raw := c.Query("date_from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be RFC3339 or YYYY-MM-DD"})
			return
		}
		dateFrom = &parsed
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLeaderboardLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, err := h.leaderboardRepo.List(c, difficulty, dateFrom, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}

	resp := make([]leaderboardResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, newLeaderboardResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/leaderboard — запись рекорда.
// Rank сохраняем как прислал клиент, сервер его не проверяет и не пересчитывает
func (h *LeaderboardHandler) Submit(c *gin.Context) {
	userID := middleware.UserID(c)

	var req submitScoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := &domain.LeaderboardEntry{
		ID:           uuid.New(),
		UserID:       userID,
		Score:        req.Score,
		Rank:         req.Rank,
		Difficulty:   req.Difficulty,
		DateAchieved: time.Now().UTC(),
	}

	if err := h.leaderboardRepo.Create(c, entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save entry"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": entry.ID.String()})
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
