package ws

import (
	"net/http"

	"arcade/internal/application/usecase"
	"arcade/internal/infrastructure/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Браузерная игра ходит с любого origin за CORS-прокси
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ChatHandler struct {
	hub      *Hub
	auth     *usecase.AuthUseCase
	userRepo *repository.UserRepository
}

func NewChatHandler(hub *Hub, auth *usecase.AuthUseCase, ur *repository.UserRepository) *ChatHandler {
	return &ChatHandler{hub: hub, auth: auth, userRepo: ur}
}

// GET /ws/chat?token=<access>
// Любая ошибка на подключении — молчаливое закрытие, клиент видит
// только упавший хендшейк
func (h *ChatHandler) Serve(c *gin.Context) {
	userIDStr, err := h.auth.ValidateAccess(c.Query("token"))
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	user, err := h.userRepo.GetByID(c, userID)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	NewClient(h.hub, conn, user.Username).Start()
}
