package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arcade/internal/application/usecase"
	"arcade/internal/domain"
	"arcade/internal/infrastructure/cache"
	"arcade/internal/infrastructure/repository"
	"arcade/internal/infrastructure/security"
	"arcade/internal/middleware"
	"arcade/internal/transport/ws"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.GameSession{},
		&domain.LeaderboardEntry{},
		&domain.Achievement{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	auth := usecase.NewAuthUseCase(
		userRepo,
		profileRepo,
		cache.NewTokenCache(rdb),
		security.NewPasswordHasher(),
		security.NewTokenManager("test-access", "test-refresh"),
	)

	hubCtx, stopHub := context.WithCancel(context.Background())
	t.Cleanup(stopHub)
	hub := ws.NewHub(rdb)
	go hub.Run(hubCtx)

	return NewRouter(
		NewAuthHandler(auth),
		NewProfileHandler(profileRepo, userRepo),
		NewSessionHandler(repository.NewSessionRepository(db)),
		NewLeaderboardHandler(repository.NewLeaderboardRepository(db)),
		NewAchievementHandler(repository.NewAchievementRepository(db)),
		ws.NewChatHandler(hub, auth, userRepo),
		auth,
		middleware.NewRateLimiter(rdb),
		"*",
	)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, r *gin.Engine, username string) (access string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.NotEmpty(t, body["access"])
	require.NotEmpty(t, body["refresh"])
	return body["access"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t)

	registerUser(t, r, "alice")

	// Повторная регистрация того же username — конфликт
	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret456",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])
}

func TestRegister_Validation(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice",
		"email":    "not-an-email",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/profile", "/api/game-sessions", "/api/load-session", "/api/achievements"} {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// Лидерборд открыт гостям
	w := doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionSaveAndLoadLatest(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodGet, "/api/load-session", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/game-sessions", token, gin.H{
		"score":      50,
		"level":      2,
		"game_state": gin.H{"ball": gin.H{"x": 10, "y": 20}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	time.Sleep(10 * time.Millisecond)

	// Вторая сессия со счетом меньше, но созданная позже
	w = doJSON(t, r, http.MethodPost, "/api/game-sessions", token, gin.H{
		"score": 10,
		"level": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/load-session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	// Последняя по времени создания, не по счету
	assert.EqualValues(t, 10, body["score"])
	assert.EqualValues(t, 1, body["level"])

	w = doJSON(t, r, http.MethodGet, "/api/game-sessions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 2)
}

func TestSessionDefaults(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/game-sessions", token, gin.H{})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 0, body["score"])
	assert.EqualValues(t, 1, body["level"])
	assert.EqualValues(t, 0, body["time_played"])
	assert.Equal(t, false, body["is_completed"])
}

func TestSessionCRUD(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/game-sessions", token, gin.H{"score": 5, "level": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["id"].(string)

	w = doJSON(t, r, http.MethodPatch, "/api/game-sessions/"+id, token, gin.H{"score": 99, "is_completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 99, body["score"])
	assert.EqualValues(t, 3, body["level"]) // PATCH не трогает непереданные поля
	assert.Equal(t, true, body["is_completed"])

	w = doJSON(t, r, http.MethodDelete, "/api/game-sessions/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/game-sessions/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionOwnerIsolation(t *testing.T) {
	r := newTestRouter(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/game-sessions", alice, gin.H{"score": 100})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["id"].(string)

	// Чужая сессия неотличима от несуществующей
	w = doJSON(t, r, http.MethodGet, "/api/game-sessions/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/game-sessions/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/game-sessions", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))
}

func TestLeaderboard(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	// Пока рекордов нет — пустой список, даже для зарегистрированной alice
	w := doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))

	for _, e := range []gin.H{
		{"score": 300, "rank": 7, "difficulty": "hard"},
		{"score": 500, "rank": 1, "difficulty": "medium"},
		{"score": 100, "rank": 2, "difficulty": "hard"},
	} {
		w = doJSON(t, r, http.MethodPost, "/api/leaderboard", token, e)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 3)
	assert.EqualValues(t, 500, list[0]["score"])
	assert.EqualValues(t, 300, list[1]["score"])
	assert.EqualValues(t, 100, list[2]["score"])

	// Rank хранится как прислали, без пересчета
	assert.EqualValues(t, 7, list[1]["rank"])
	user := list[0]["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	w = doJSON(t, r, http.MethodGet, "/api/leaderboard?difficulty=hard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 2)

	yesterday := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02")
	w = doJSON(t, r, http.MethodGet, "/api/leaderboard?difficulty=hard&date_from="+yesterday, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 2)

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")
	w = doJSON(t, r, http.MethodGet, "/api/leaderboard?date_from="+tomorrow, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))

	w = doJSON(t, r, http.MethodGet, "/api/leaderboard?difficulty=impossible", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Запись рекорда требует токен
	w = doJSON(t, r, http.MethodPost, "/api/leaderboard", "", gin.H{"score": 1, "difficulty": "easy"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLeaderboard_ZeroScoreAccepted(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	// Проиграть на первом уровне с нулем очков — тоже результат
	w := doJSON(t, r, http.MethodPost, "/api/leaderboard", token, gin.H{
		"score": 0, "rank": 1, "difficulty": "easy",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 1)
	assert.EqualValues(t, 0, list[0]["score"])

	// Отрицательный счет не принимаем
	w = doJSON(t, r, http.MethodPost, "/api/leaderboard", token, gin.H{
		"score": -5, "rank": 1, "difficulty": "easy",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaderboard_LimitClamped(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	for i := 0; i < 60; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/leaderboard", token, gin.H{
			"score": i, "rank": 60 - i, "difficulty": "easy",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// Без limit действует дефолт 50
	w := doJSON(t, r, http.MethodGet, "/api/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 50)

	// Завышенный limit прижимается к потолку, а не сбрасывается к дефолту
	w = doJSON(t, r, http.MethodGet, "/api/leaderboard?limit=1000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 60)

	// Мусорный limit падает обратно на дефолт
	w = doJSON(t, r, http.MethodGet, "/api/leaderboard?limit=abc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 50)
}

func TestProfile(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Empty(t, body["bio"])

	w = doJSON(t, r, http.MethodPatch, "/api/profile", token, gin.H{
		"bio":           "hello <script>alert(1)</script>",
		"date_of_birth": "1990-05-07",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	// Теги экранированы при записи
	assert.Equal(t, "hello &lt;script&gt;alert(1)&lt;/script&gt;", body["bio"])
	assert.Equal(t, "1990-05-07", body["date_of_birth"])

	w = doJSON(t, r, http.MethodPatch, "/api/profile", token, gin.H{"avatar_url": "https://cdn.example.com/a.png"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "https://cdn.example.com/a.png", body["avatar_url"])
	// Частичный апдейт не стирает остальное
	assert.Equal(t, "1990-05-07", body["date_of_birth"])

	w = doJSON(t, r, http.MethodPatch, "/api/profile", token, gin.H{"date_of_birth": "07.05.1990"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAccount(t *testing.T) {
	r := newTestRouter(t)
	token := registerUser(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/game-sessions", token, gin.H{"score": 50})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Токен еще жив, но юзера уже нет
	w = doJSON(t, r, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAchievements(t *testing.T) {
	r := newTestRouter(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/achievements", alice, gin.H{
		"name":        "Level 10",
		"description": "Reached level 10",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/achievements", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Level 10", list[0]["name"])

	// Чужие ачивки не видны
	w = doJSON(t, r, http.MethodGet, "/api/achievements", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))
}

func TestRefreshEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	refresh := decodeBody(t, w)["refresh"].(string)

	w = doJSON(t, r, http.MethodPost, "/api/refresh", "", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])

	// Старый refresh уже отозван
	w = doJSON(t, r, http.MethodPost, "/api/refresh", "", gin.H{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/refresh", "", gin.H{"refresh": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
