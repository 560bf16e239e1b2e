package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/microblog-app/backend/internal/config"
	"github.com/microblog-app/backend/internal/handlers"
	"github.com/microblog-app/backend/internal/mailer"
	"github.com/microblog-app/backend/internal/middleware"
	"github.com/microblog-app/backend/internal/models"
	"github.com/microblog-app/backend/internal/routes"
	"github.com/microblog-app/backend/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testMailer struct {
	activations chan string
	resets      chan string
}

func (m *testMailer) SendActivationEmail(_ *models.User, token string) error {
	m.activations <- token
	return nil
}

func (m *testMailer) SendPasswordResetEmail(_ *models.User, token string) error {
	m.resets <- token
	return nil
}

var _ mailer.Mailer = (*testMailer)(nil)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	users    *services.UserService
	sessions *services.SessionService
	mail     *testMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers-%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Relationship{}, &models.Micropost{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		BcryptCost:     bcrypt.MinCost,
		RememberExpiry: time.Hour,
		AppBaseURL:     "http://localhost:8080",
	}
	mail := &testMailer{
		activations: make(chan string, 8),
		resets:      make(chan string, 8),
	}

	userService := services.NewUserService(db, mail, cfg)
	sessionService := services.NewSessionService(userService)
	resetService := services.NewPasswordResetService(userService, mail)
	relationshipService := services.NewRelationshipService(db)
	micropostService := services.NewMicropostService(db)
	feedService := services.NewFeedService(db)

	app := fiber.New()
	app.Use(middleware.CurrentUser(sessionService))
	routes.Setup(app,
		handlers.NewUsersHandler(userService, relationshipService),
		handlers.NewSessionsHandler(sessionService, userService, cfg),
		handlers.NewAccountActivationsHandler(userService),
		handlers.NewPasswordResetsHandler(resetService),
		handlers.NewRelationshipsHandler(relationshipService, userService),
		handlers.NewMicropostsHandler(micropostService),
		handlers.NewFeedHandler(feedService),
		handlers.NewHealthHandler(),
	)

	return &testEnv{app: app, db: db, users: userService, sessions: sessionService, mail: mail}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, cookies []*http.Cookie) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// signupAndLogin walks the happy path through the HTTP surface and returns
// the session cookies.
func (e *testEnv) signupAndLogin(t *testing.T, name, email string) []*http.Cookie {
	t.Helper()

	resp := e.request(t, http.MethodPost, "/api/users", map[string]string{
		"name": name, "email": email,
		"password": "foobarbaz", "password_confirmation": "foobarbaz",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var token string
	select {
	case token = <-e.mail.activations:
	case <-time.After(2 * time.Second):
		t.Fatal("activation email was not sent")
	}

	resp = e.request(t, http.MethodGet, "/api/account_activations/"+token+"?email="+email, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = e.request(t, http.MethodPost, "/api/sessions", map[string]any{
		"email": email, "password": "foobarbaz", "remember_me": true,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	resp.Body.Close()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestSignupActivateLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "Example User", "user@example.com")

	// the cookie pair resolves to a logged-in session
	resp := env.request(t, http.MethodGet, "/api/feed", nil, cookies)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginRequiresActivation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/users", map[string]string{
		"name": "Example User", "email": "user@example.com",
		"password": "foobarbaz", "password_confirmation": "foobarbaz",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPost, "/api/sessions", map[string]any{
		"email": "user@example.com", "password": "foobarbaz",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestSignupValidationErrorsAggregated(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/users", map[string]string{
		"name": "", "email": "bad",
		"password": "short", "password_confirmation": "nope",
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "the form contains 4 errors", body["message"])
	assert.Len(t, body["messages"], 4)
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signupAndLogin(t, "Example User", "user@example.com")

	resp := env.request(t, http.MethodDelete, "/api/sessions", nil, cookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// the old cookie pair no longer authenticates
	resp = env.request(t, http.MethodGet, "/api/feed", nil, cookies)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestFollowAndFeedOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	aCookies := env.signupAndLogin(t, "User A", "a@example.com")
	bCookies := env.signupAndLogin(t, "User B", "b@example.com")

	b, err := env.users.FindByEmail("b@example.com")
	require.NoError(t, err)

	resp := env.request(t, http.MethodPost, "/api/microposts", map[string]string{"content": "hello from b"}, bCookies)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodPost, "/api/relationships", map[string]any{"followed_id": b.ID}, aCookies)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/api/feed", nil, aCookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.EqualValues(t, 1, body["total"])
}

func TestPasswordResetExpiredMessage(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndLogin(t, "Example User", "user@example.com")

	resp := env.request(t, http.MethodPost, "/api/password_resets", map[string]string{"email": "user@example.com"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var token string
	select {
	case token = <-env.mail.resets:
	case <-time.After(2 * time.Second):
		t.Fatal("reset email was not sent")
	}

	// push reset_sent_at three hours into the past
	user, err := env.users.FindByEmail("user@example.com")
	require.NoError(t, err)
	stale := time.Now().Add(-3 * time.Hour)
	require.NoError(t, env.db.Model(user).Update("reset_sent_at", stale).Error)

	resp = env.request(t, http.MethodGet, "/api/password_resets/"+token+"?email=user@example.com", nil, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Contains(t, body["message"], "expired")
}

func TestPasswordResetUnknownEmailGenericResponse(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndLogin(t, "Example User", "user@example.com")

	known := env.request(t, http.MethodPost, "/api/password_resets", map[string]string{"email": "user@example.com"}, nil)
	unknown := env.request(t, http.MethodPost, "/api/password_resets", map[string]string{"email": "nobody@example.com"}, nil)

	require.Equal(t, http.StatusOK, known.StatusCode)
	require.Equal(t, http.StatusOK, unknown.StatusCode)
	assert.Equal(t, decodeBody(t, known)["message"], decodeBody(t, unknown)["message"])
}

func TestUserDestroyRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	aCookies := env.signupAndLogin(t, "User A", "a@example.com")
	env.signupAndLogin(t, "User B", "b@example.com")

	b, err := env.users.FindByEmail("b@example.com")
	require.NoError(t, err)

	resp := env.request(t, http.MethodDelete, "/api/users/"+b.ID.String(), nil, aCookies)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// promote a to admin and retry
	a, err := env.users.FindByEmail("a@example.com")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(a).Update("admin", true).Error)

	resp = env.request(t, http.MethodDelete, "/api/users/"+b.ID.String(), nil, aCookies)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
