package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bookmarkd/bookmarkd/internal/db"
	"github.com/bookmarkd/bookmarkd/internal/models"
	"github.com/bookmarkd/bookmarkd/pkg/config"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")
	require.NoError(t, db.Migrate(gdb), "failed to migrate schema")

	cfg := &config.Config{
		Auth: config.AuthConfig{
			Secret:   "test-secret",
			TokenTTL: time.Hour,
		},
		Images: config.ImagesConfig{
			MediaRoot:     t.TempDir(),
			MaxFetchBytes: 1 << 20,
			FetchTimeout:  5 * time.Second,
		},
	}

	engine := gin.New()
	router := NewRouter(gdb, nil, cfg)
	router.SetupRoutes(engine)
	return engine, gdb
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, engine *gin.Engine, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerAndLogin(t *testing.T, engine *gin.Engine, username string) (int64, string) {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/register", "", map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "secret123",
		"password2": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	userID := int64(decode(t, w)["user"].(map[string]interface{})["id"].(float64))

	w = doJSON(t, engine, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, ok := decode(t, w)["token"].(string)
	require.True(t, ok, "token missing from login response")
	return userID, token
}

func TestRegisterAndLoginFlow(t *testing.T) {
	engine, gdb := newTestRouter(t)

	userID, token := registerAndLogin(t, engine, "alice")
	assert.NotZero(t, userID)
	assert.NotEmpty(t, token)

	// registration is logged
	var action models.Action
	require.NoError(t, gdb.Where("user_id = ?", userID).First(&action).Error)
	assert.Equal(t, models.VerbCreatedAccount, action.Verb)

	// an email identifier works too
	w := doJSON(t, engine, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidationErrors(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodPost, "/api/register", "", map[string]string{
		"username":  "alice",
		"email":     "not-an-email",
		"password":  "secret123",
		"password2": "different",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := decode(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password2")
}

func TestAuthRequired(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/feed", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFollowToggleContract(t *testing.T) {
	engine, gdb := newTestRouter(t)

	_, token := registerAndLogin(t, engine, "alice")
	bobID, _ := registerAndLogin(t, engine, "bob")

	// missing params answer 200 with an error status
	w := doForm(t, engine, "/api/users/follow", token, url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])

	// unknown target: same contract, nothing written
	w = doForm(t, engine, "/api/users/follow", token, url.Values{
		"id": {"99999"}, "action": {"follow"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])

	var edges int64
	require.NoError(t, gdb.Model(&models.Contact{}).Count(&edges).Error)
	assert.EqualValues(t, 0, edges)

	// a real follow, twice, stays a single edge
	form := url.Values{"id": {strconv.FormatInt(bobID, 10)}, "action": {"follow"}}
	for i := 0; i < 2; i++ {
		w = doForm(t, engine, "/api/users/follow", token, form)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode(t, w)["status"])
	}
	require.NoError(t, gdb.Model(&models.Contact{}).Count(&edges).Error)
	assert.EqualValues(t, 1, edges)

	// the detail view reflects the relationship
	w = doJSON(t, engine, http.MethodGet, "/api/users/bob", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["followed"])
	assert.EqualValues(t, 1, body["followers_count"])

	// unfollow and the edge disappears
	form.Set("action", "unfollow")
	w = doForm(t, engine, "/api/users/follow", token, form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	require.NoError(t, gdb.Model(&models.Contact{}).Count(&edges).Error)
	assert.EqualValues(t, 0, edges)
}

func TestFollowedFeedOverHTTP(t *testing.T) {
	engine, _ := newTestRouter(t)

	_, aliceToken := registerAndLogin(t, engine, "alice")
	bobID, bobToken := registerAndLogin(t, engine, "bob")

	w := doForm(t, engine, "/api/users/follow", aliceToken, url.Values{
		"id": {strconv.FormatInt(bobID, 10)}, "action": {"follow"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/posts", bobToken, map[string]interface{}{
		"title":   "Bob Writes",
		"body":    "content",
		"publish": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	actions := decode(t, w)["actions"].([]interface{})
	require.NotEmpty(t, actions)

	verbs := make([]string, 0, len(actions))
	for _, a := range actions {
		entry := a.(map[string]interface{})
		assert.EqualValues(t, bobID, entry["user_id"])
		verbs = append(verbs, entry["verb"].(string))
	}
	assert.Contains(t, verbs, models.VerbPublishes)
}

func TestLikeToggleContract(t *testing.T) {
	engine, gdb := newTestRouter(t)

	aliceID, token := registerAndLogin(t, engine, "alice")

	img := &models.Image{
		UserID:    aliceID,
		Title:     "Sunset",
		Slug:      "sunset",
		URL:       "https://example.com/sunset.jpg",
		Image:     "sunset.jpg",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, gdb.Create(img).Error)

	form := url.Values{
		"id":     {strconv.FormatInt(img.ID, 10)},
		"action": {"like"},
	}
	w := doForm(t, engine, "/api/images/like", token, form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	var stored models.Image
	require.NoError(t, gdb.First(&stored, img.ID).Error)
	assert.EqualValues(t, 1, stored.TotalLikes)

	// bad action keeps the contract
	form.Set("action", "smash")
	w = doForm(t, engine, "/api/images/like", token, form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])

	form.Set("action", "unlike")
	w = doForm(t, engine, "/api/images/like", token, form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	require.NoError(t, gdb.First(&stored, img.ID).Error)
	assert.EqualValues(t, 0, stored.TotalLikes)
}

func TestBlogOverHTTP(t *testing.T) {
	engine, _ := newTestRouter(t)

	_, token := registerAndLogin(t, engine, "alice")

	w := doJSON(t, engine, http.MethodPost, "/api/posts", token, map[string]interface{}{
		"title": "Draft Post",
		"body":  "not yet public",
		"tags":  []string{"golang"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	slug := decode(t, w)["post"].(map[string]interface{})["slug"].(string)

	// drafts are invisible to readers
	w = doJSON(t, engine, http.MethodGet, "/api/posts/"+slug, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/posts/"+slug+"/publish", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/posts/"+slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// anyone can comment on a published post
	w = doJSON(t, engine, http.MethodPost, "/api/posts/"+slug+"/comments", "", map[string]string{
		"name":  "Reader",
		"email": "reader@example.com",
		"body":  "Nice one.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/posts/"+slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	comments := decode(t, w)["comments"].([]interface{})
	assert.Len(t, comments, 1)

	// tag filter and search both find it
	w = doJSON(t, engine, http.MethodGet, "/api/posts?tag=golang", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["posts"].([]interface{}), 1)

	w = doJSON(t, engine, http.MethodGet, "/api/posts/search?q=Draft", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["posts"].([]interface{}), 1)
}

func TestHealthEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", decode(t, w)["status"])
}
