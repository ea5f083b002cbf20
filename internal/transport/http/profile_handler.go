package handlers

import (
	"html"
	"net/http"
	"time"

	"arcade/internal/infrastructure/repository"
	"arcade/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileRepo *repository.ProfileRepository
	userRepo    *repository.UserRepository
}

func NewProfileHandler(pr *repository.ProfileRepository, ur *repository.UserRepository) *ProfileHandler {
	return &ProfileHandler{profileRepo: pr, userRepo: ur}
}

type updateProfileReq struct {
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
	DateOfBirth *string `json:"date_of_birth"` // YYYY-MM-DD
}

// GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	user, err := h.userRepo.GetByID(c, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	profile, err := h.profileRepo.GetByUserID(c, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(user, profile))
}

// PUT/PATCH /api/profile — частичный апдейт только своего профиля
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := middleware.UserID(c)

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.Bio != nil {
		// Экранируем HTML, чтобы bio нельзя было использовать для XSS
		updates["bio"] = html.EscapeString(*req.Bio)
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_of_birth must be YYYY-MM-DD"})
			return
		}
		updates["date_of_birth"] = dob
	}

	if len(updates) > 0 {
		if err := h.profileRepo.Update(c, userID, updates); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	h.Get(c)
}

// DELETE /api/profile — удаление аккаунта, каскадом сносит все данные юзера
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID := middleware.UserID(c)

	if err := h.userRepo.Delete(c, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
