package handlers

import (
	"net/http"
	"time"

	"arcade/internal/domain"
	"arcade/internal/infrastructure/repository"
	"arcade/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AchievementHandler struct {
	achievementRepo *repository.AchievementRepository
}

func NewAchievementHandler(ar *repository.AchievementRepository) *AchievementHandler {
	return &AchievementHandler{achievementRepo: ar}
}

type createAchievementReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// GET /api/achievements — только свои, без фильтров
func (h *AchievementHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	achievements, err := h.achievementRepo.ListByUser(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load achievements"})
		return
	}

	resp := make([]achievementResponse, 0, len(achievements))
	for i := range achievements {
		resp = append(resp, newAchievementResponse(&achievements[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/achievements — append-only
func (h *AchievementHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)

	var req createAchievementReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	achievement := &domain.Achievement{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		AchievedAt:  time.Now().UTC(),
	}

	if err := h.achievementRepo.Create(c, achievement); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save achievement"})
		return
	}

	c.JSON(http.StatusCreated, newAchievementResponse(achievement))
}
