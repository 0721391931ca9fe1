package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/handler"
	"github.com/noah-isme/libris-api/internal/middleware"
	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/repository"
	"github.com/noah-isme/libris-api/internal/service"
)

const e2eSecret = "integration-secret"

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Subject{}, &models.Book{}, &models.ActivityLog{},
	))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), nil, logger)
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, activityService, e2eSecret, time.Hour, logger)
	userService := service.NewUserService(userRepo, nil, time.Minute, activityService, logger)

	subjectService := service.NewResourceService(
		repository.NewResourceRepository[models.Subject](db),
		service.ResourceConfig[models.Subject]{TypeName: "subject"},
		validate, activityService, nil, logger)

	bookService := service.NewResourceService(
		repository.NewResourceRepository[models.Book](db),
		service.ResourceConfig[models.Book]{
			TypeName: "book",
			Expand:   []string{"Subject"},
		},
		validate, activityService, nil, logger)

	app := fiber.New()
	optionalAuth := middleware.JWTOptional(e2eSecret)
	requiredAuth := middleware.JWTProtected(e2eSecret)
	adminOnly := middleware.RequireRole("admin")

	api := app.Group("/api/v1")
	handler.NewAuthHandler(authService, validate, logger).Register(api.Group("/auth"))
	handler.NewUserHandler(userService, validate, logger).Register(api.Group("/users", optionalAuth))
	handler.NewResourceHandler(subjectService, "subject", logger).Register(api.Group("/subjects", optionalAuth), adminOnly)
	handler.NewResourceHandler(bookService, "book", logger).Register(api.Group("/books", optionalAuth), adminOnly)
	handler.NewActivityHandler(activityService, nil, logger).Register(api.Group("/activity", requiredAuth, adminOnly))

	return testEnv{app: app, db: db}
}

func (e testEnv) seedAdmin(t *testing.T) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, e.db.Create(&models.User{
		Name:         "Root",
		Username:     "root",
		IsAdmin:      true,
		PasswordHash: string(hash),
	}).Error)
}

func (e testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decode(t, resp)
	data, ok := env["data"].(map[string]interface{})
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func (e testEnv) do(t *testing.T, method, path, token string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCatalogLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.login(t, "root", "hunter22")

	// anonymous reads pass, anonymous writes do not
	resp := env.do(t, http.MethodGet, "/api/v1/subjects", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/subjects", "", models.Subject{Name: "History"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// admin creates a subject and a book referencing it
	resp = env.do(t, http.MethodPost, "/api/v1/subjects", token, models.Subject{Name: "History"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subject := decode(t, resp)
	subjectID := uint(subject["data"].(map[string]interface{})["id"].(float64))

	resp = env.do(t, http.MethodPost, "/api/v1/books", token, models.Book{Name: "Decline and Fall", SubjectID: &subjectID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	book := decode(t, resp)
	bookID := uint(book["data"].(map[string]interface{})["id"].(float64))

	// the expanded read materialises the subject
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", bookID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	read := decode(t, resp)
	bookData := read["data"].(map[string]interface{})
	require.Equal(t, "History", bookData["subject"].(map[string]interface{})["name"])

	// update keeps identity, delete removes
	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/books/%d", bookID), token, models.Book{Name: "Decline and Fall, 2nd ed.", SubjectID: &subjectID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", bookID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", bookID), "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// every mutation left an audit entry, admin-gated
	resp = env.do(t, http.MethodGet, "/api/v1/activity", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/activity?limit=50", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	activity := decode(t, resp)
	items := activity["data"].(map[string]interface{})["items"].([]interface{})
	// login + 2 creates + update + delete
	require.Len(t, items, 5)
}

func TestBatchDeleteAccountingE2E(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.login(t, "root", "hunter22")

	ids := make([]uint, 0, 2)
	for _, name := range []string{"History", "Science"} {
		resp := env.do(t, http.MethodPost, "/api/v1/subjects", token, models.Subject{Name: name})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		created := decode(t, resp)
		ids = append(ids, uint(created["data"].(map[string]interface{})["id"].(float64)))
	}

	resp := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/subjects?ids=%d,%d,999", ids[0], ids[1]), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env2 := decode(t, resp)
	require.Equal(t, true, env2["success"])

	summary := env2["data"].(map[string]interface{})
	require.Equal(t, float64(2), summary["deleted"])
	require.Equal(t, float64(1), summary["notFound"])
	require.Equal(t, float64(0), summary["failed"])
}

func TestProfilePrivacyE2E(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.User{
		Name:              "Ada",
		Username:          "ada",
		PasswordHash:      string(hash),
		ProfileVisibility: models.VisibilityPrivate,
	}).Error)

	var ada models.User
	require.NoError(t, env.db.Where("username = ?", "ada").First(&ada).Error)

	// anonymous: forbidden
	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/profile", ada.ID), "", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// owner: full self view
	adaToken := env.login(t, "ada", "pass1234")
	resp = env.do(t, http.MethodGet, "/api/v1/users/me", adaToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode(t, resp)
	require.Contains(t, me["data"].(map[string]interface{}), "emails")

	// admin: wildcard view, and the fetch is audited
	rootToken := env.login(t, "root", "hunter22")
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/profile", ada.ID), rootToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode(t, resp)
	require.Contains(t, view["data"].(map[string]interface{}), "isAdmin")

	var fetchCount int64
	require.NoError(t, env.db.Model(&models.ActivityLog{}).Where("action = ?", models.ActionFetch).Count(&fetchCount).Error)
	require.Equal(t, int64(1), fetchCount)
}

func TestTokenClaimsShape(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.login(t, "root", "hunter22")

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(e2eSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, "root", claims["username"])
	require.Equal(t, "admin", claims["role"])
}
