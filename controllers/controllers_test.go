package controllers_test

import (
	"Playnet/middleware"
	models "Playnet/models/postgres"
	"Playnet/routes"
	"Playnet/services/redis"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	return buildRouter(t, nil)
}

// setupRouterWithRedis backs the router with a throwaway miniredis so the
// cache paths run for real instead of short-circuiting on a nil client.
func setupRouterWithRedis(t *testing.T) (*gin.Engine, *gorm.DB) {
	mr := miniredis.RunT(t)
	return buildRouter(t, redis.NewRedisClient("redis://"+mr.Addr(), 0))
}

func buildRouter(t *testing.T, redisClient *redis.RedisClient) (*gin.Engine, *gorm.DB) {
	t.Setenv("KEY", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.GameProfile{},
		&models.User{},
		&models.Gamertag{},
		&models.GameRecord{},
		&models.Connection{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupInvitation{},
		&models.GamingSession{},
		&models.SessionParticipant{},
		&models.SessionInvitation{},
		&models.SessionMessage{},
	))

	router := gin.New()
	middleware.SetUpMiddleware(router)
	routes.SetupRoutes(router, db, redisClient)
	return router, db
}

func signUp(t *testing.T, router *gin.Engine, email, username string) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("username", username)
	form.Set("password", "hunter22")

	req, _ := http.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func bearer(t *testing.T, email string) string {
	token, err := middleware.GenerateJWT(email)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doForm(router *gin.Engine, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignUpAndLogin(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "zoe@example.com", "zoe")

	form := url.Values{}
	form.Set("email", "zoe@example.com")
	form.Set("password", "hunter22")
	w := doForm(router, "POST", "/login", "", form)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["token"])
	assert.Equal(t, "zoe", response["username"])

	// Wrong password stays out
	form.Set("password", "wrong")
	w = doForm(router, "POST", "/login", "", form)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignUpRejectsDuplicateUsername(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "zoe@example.com", "zoe")

	form := url.Values{}
	form.Set("email", "other@example.com")
	form.Set("username", "zoe")
	form.Set("password", "hunter22")
	w := doForm(router, "POST", "/signup", "", form)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router, _ := setupRouter(t)
	w := doJSON(router, "GET", "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLibraryAddAndList(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "zoe@example.com", "zoe")
	token := bearer(t, "zoe@example.com")

	catalogID := int64(3328)
	w := doJSON(router, "POST", "/auth/library", token, map[string]interface{}{
		"catalog_id": catalogID,
		"name":       "The Witcher 3",
		"platform":   "pc",
		"genres":     []string{"RPG"},
		"rating":     9,
		"favorite":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Same catalog id on the same platform is a hard duplicate
	w = doJSON(router, "POST", "/auth/library", token, map[string]interface{}{
		"catalog_id": catalogID,
		"name":       "The Witcher 3",
		"platform":   "pc",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Manual entry with the same name only warns
	w = doJSON(router, "POST", "/auth/library", token, map[string]interface{}{
		"name":     "The Witcher 3",
		"platform": "pc",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["warning"], "already in your library")

	w = doJSON(router, "GET", "/users/zoe/library", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestLibraryRejectsUnknownPlatform(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "zoe@example.com", "zoe")
	token := bearer(t, "zoe@example.com")

	w := doJSON(router, "POST", "/auth/library", token, map[string]interface{}{
		"name":     "Tetris",
		"platform": "gameboy",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "host@example.com", "host")
	signUp(t, router, "guest@example.com", "guest")
	hostToken := bearer(t, "host@example.com")
	guestToken := bearer(t, "guest@example.com")

	w := doJSON(router, "POST", "/auth/sessions", hostToken, map[string]interface{}{
		"title":        "Raid night",
		"game_name":    "Destiny 2",
		"platform":     "pc",
		"scheduled_at": time.Now().Add(2 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	sessionID := created.Session.ID
	require.NotEmpty(t, sessionID)

	// Guest joins the public session
	w = doJSON(router, "POST", fmt.Sprintf("/auth/sessions/%s/join", sessionID), guestToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Second join is rejected
	w = doJSON(router, "POST", fmt.Sprintf("/auth/sessions/%s/join", sessionID), guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Host cannot leave
	w = doJSON(router, "POST", fmt.Sprintf("/auth/sessions/%s/leave", sessionID), hostToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Guest chats
	form := url.Values{}
	form.Set("body", "bring void subclasses")
	w = doForm(router, "POST", fmt.Sprintf("/auth/sessions/%s/messages", sessionID), guestToken, form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, "GET", fmt.Sprintf("/auth/sessions/%s/messages", sessionID), hostToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var messages []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "guest", messages[0]["sender"])

	// Host cancels, guests are off the hook
	w = doJSON(router, "POST", fmt.Sprintf("/auth/sessions/%s/cancel", sessionID), hostToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Cancelled sessions take no more joins
	signUp(t, router, "late@example.com", "late")
	w = doJSON(router, "POST", fmt.Sprintf("/auth/sessions/%s/join", sessionID), bearer(t, "late@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChatBacklogEvictedOnEditAndDelete(t *testing.T) {
	router, _ := setupRouterWithRedis(t)
	signUp(t, router, "host@example.com", "host")
	token := bearer(t, "host@example.com")

	w := doJSON(router, "POST", "/auth/sessions", token, map[string]interface{}{
		"title":        "Speedrun practice",
		"game_name":    "Celeste",
		"scheduled_at": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	sessionID := created.Session.ID

	post := func(body string) uint {
		form := url.Values{}
		form.Set("body", body)
		w := doForm(router, "POST", fmt.Sprintf("/auth/sessions/%s/messages", sessionID), token, form)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var response struct {
			ChatMessage struct {
				ID uint `json:"id"`
			} `json:"chat_message"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		return response.ChatMessage.ID
	}
	poll := func(afterID uint) []map[string]interface{} {
		w := doJSON(router, "GET",
			fmt.Sprintf("/auth/sessions/%s/messages?after_id=%d", sessionID, afterID), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var messages []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
		return messages
	}

	first := post("first take")
	second := post("second take")
	third := post("third take")

	// Incremental polls come out of the warm backlog
	messages := poll(first)
	require.Len(t, messages, 2)
	assert.Equal(t, "second take", messages[0]["body"])

	// Editing must not leave the pre-edit body behind in the backlog
	form := url.Values{}
	form.Set("body", "second take, fixed")
	w = doForm(router, "PATCH",
		fmt.Sprintf("/auth/sessions/%s/messages/%d", sessionID, second), token, form)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	messages = poll(first)
	require.Len(t, messages, 2)
	assert.Equal(t, "second take, fixed", messages[0]["body"])

	// Same for deletion
	w = doJSON(router, "DELETE",
		fmt.Sprintf("/auth/sessions/%s/messages/%d", sessionID, third), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	messages = poll(first)
	require.Len(t, messages, 1)
	assert.Equal(t, "second take, fixed", messages[0]["body"])
}

func TestConnectionRequestFlow(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "zoe@example.com", "zoe")
	signUp(t, router, "adam@example.com", "adam")
	zoeToken := bearer(t, "zoe@example.com")
	adamToken := bearer(t, "adam@example.com")

	form := url.Values{}
	form.Set("username", "adam")
	w := doForm(router, "POST", "/auth/connections", zoeToken, form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Adam sees it in the inbox
	w = doJSON(router, "GET", "/auth/inbox/connection-requests", adamToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inbox))
	require.Len(t, inbox["received_connection_requests"], 1)
	assert.Equal(t, "zoe", inbox["received_connection_requests"][0]["username"])

	// Zoe cannot accept her own request
	w = doJSON(router, "POST", "/auth/connections/adam/accept", zoeToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Adam accepts and both see each other as friends
	w = doJSON(router, "POST", "/auth/connections/zoe/accept", adamToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, "GET", "/auth/friends", zoeToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var friends []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, "adam", friends[0]["username"])
}

func TestCompatibilitySelfCheck(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "zoe@example.com", "zoe")
	token := bearer(t, "zoe@example.com")

	w := doJSON(router, "GET", "/auth/compatibility/zoe", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "You cannot compare with yourself.", response["error"])
}

func TestCompatibilityReportOverHTTP(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "zoe@example.com", "zoe")
	signUp(t, router, "adam@example.com", "adam")
	zoeToken := bearer(t, "zoe@example.com")
	adamToken := bearer(t, "adam@example.com")

	catalogID := int64(1010)
	for _, token := range []string{zoeToken, adamToken} {
		w := doJSON(router, "POST", "/auth/library", token, map[string]interface{}{
			"catalog_id": catalogID,
			"name":       "Hades",
			"platform":   "pc",
			"genres":     []string{"Roguelike"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(router, "GET", "/auth/compatibility/adam", zoeToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Report struct {
			Score       float64 `json:"score"`
			Rating      string  `json:"rating"`
			SharedCount int     `json:"shared_count"`
		} `json:"report"`
		Cached bool `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(100), response.Report.Score)
	assert.Equal(t, 1, response.Report.SharedCount)
	assert.False(t, response.Cached)
}

func TestGroupInvitationFlow(t *testing.T) {
	router, _ := setupRouter(t)
	signUp(t, router, "zoe@example.com", "zoe")
	signUp(t, router, "adam@example.com", "adam")
	zoeToken := bearer(t, "zoe@example.com")
	adamToken := bearer(t, "adam@example.com")

	form := url.Values{}
	form.Set("name", "Raid squad")
	w := doForm(router, "POST", "/auth/groups", zoeToken, form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Group struct {
			ID uint `json:"id"`
		} `json:"group"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	form = url.Values{}
	form.Set("username", "adam")
	w = doForm(router, "POST", fmt.Sprintf("/auth/groups/%d/invitations", created.Group.ID), zoeToken, form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, "GET", "/auth/inbox/group-invitations", adamToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox struct {
		GroupInvitations []struct {
			InvitationID uint `json:"invitation_id"`
		} `json:"group_invitations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inbox))
	require.Len(t, inbox.GroupInvitations, 1)

	w = doJSON(router, "POST",
		fmt.Sprintf("/auth/inbox/group-invitations/%d/accept", inbox.GroupInvitations[0].InvitationID),
		adamToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Adam now shows up in the member list
	w = doJSON(router, "GET", fmt.Sprintf("/auth/groups/%d", created.Group.ID), adamToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Members []map[string]interface{} `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Len(t, detail.Members, 2)
}
