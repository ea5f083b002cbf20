package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"arcade/internal/domain"
	"arcade/internal/infrastructure/repository"
	"arcade/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionHandler struct {
	sessionRepo *repository.SessionRepository
}

func NewSessionHandler(sr *repository.SessionRepository) *SessionHandler {
	return &SessionHandler{sessionRepo: sr}
}

type createSessionReq struct {
	GameState   json.RawMessage `json:"game_state"`
	Score       int             `json:"score"`
	Level       int             `json:"level"`
	TimePlayed  int64           `json:"time_played"`
	IsCompleted bool            `json:"is_completed"`
}

type updateSessionReq struct {
	GameState   json.RawMessage `json:"game_state"`
	Score       *int            `json:"score"`
	Level       *int            `json:"level"`
	TimePlayed  *int64          `json:"time_played"`
	IsCompleted *bool           `json:"is_completed"`
}

// GET /api/game-sessions
func (h *SessionHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	sessions, err := h.sessionRepo.ListByUser(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, newSessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/game-sessions
// Владелец всегда берется из токена, что бы ни прислали в теле
func (h *SessionHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)

	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := &domain.GameSession{
		ID:          uuid.New(),
		UserID:      userID,
		GameState:   datatypes.JSON(req.GameState),
		Score:       req.Score,
		Level:       req.Level,
		TimePlayed:  req.TimePlayed,
		IsCompleted: req.IsCompleted,
	}
	if session.Level == 0 {
		session.Level = 1
	}

	if err := h.sessionRepo.Create(c, session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	c.JSON(http.StatusCreated, newSessionResponse(session))
}

// GET /api/game-sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	session, err := h.sessionRepo.GetByID(c, userID, id)
	if err != nil {
		// Чужая сессия выглядит так же, как несуществующая
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

// PUT/PATCH /api/game-sessions/:id
func (h *SessionHandler) Update(c *gin.Context) {
	userID := middleware.UserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	var req updateSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.GameState != nil {
		updates["game_state"] = datatypes.JSON(req.GameState)
	}
	if req.Score != nil {
		updates["score"] = *req.Score
	}
	if req.Level != nil {
		updates["level"] = *req.Level
	}
	if req.TimePlayed != nil {
		updates["time_played"] = *req.TimePlayed
	}
	if req.IsCompleted != nil {
		updates["is_completed"] = *req.IsCompleted
	}

	if len(updates) == 0 {
		h.Get(c)
		return
	}

	session, err := h.sessionRepo.Update(c, userID, id, updates)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

// DELETE /api/game-sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if err := h.sessionRepo.Delete(c, userID, id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /api/load-session — последнее сохранение по времени создания
func (h *SessionHandler) LoadLatest(c *gin.Context) {
	userID := middleware.UserID(c)

	session, err := h.sessionRepo.Latest(c, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No session found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}
