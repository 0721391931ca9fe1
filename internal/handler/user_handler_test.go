package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/libris-api/internal/dto"
	"github.com/noah-isme/libris-api/internal/handler"
	"github.com/noah-isme/libris-api/internal/service"
)

type mockUserService struct {
	lastRequester  *service.Actor
	lastTargetID   uint
	lastVisibility string
	result         service.Result
}

func (m *mockUserService) ViewProfile(_ context.Context, requester *service.Actor, targetID uint) service.Result {
	m.lastRequester = requester
	m.lastTargetID = targetID
	return m.result
}

func (m *mockUserService) ViewOwnProfile(_ context.Context, requester service.Actor) service.Result {
	m.lastRequester = &requester
	return m.result
}

func (m *mockUserService) UpdateVisibility(_ context.Context, requester service.Actor, visibility string) service.Result {
	m.lastRequester = &requester
	m.lastVisibility = visibility
	return m.result
}

func newUserApp(svc service.UserService, authenticated bool) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/users", func(c *fiber.Ctx) error {
		if authenticated {
			c.Locals("user_id", uint(7))
			c.Locals("user_role", "user")
			c.Locals("username", "ada")
		}
		return c.Next()
	})
	handler.NewUserHandler(svc, validator.New(validator.WithRequiredStructEnabled()), zerolog.New(io.Discard)).Register(group)
	return app
}

func TestUserHandlerProfileAnonymous(t *testing.T) {
	svc := &mockUserService{result: service.OKResult("profile retrieved", map[string]string{"username": "ada"})}
	app := newUserApp(svc, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/7/profile", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Nil(t, svc.lastRequester)
	require.Equal(t, uint(7), svc.lastTargetID)
}

func TestUserHandlerProfileAuthenticated(t *testing.T) {
	svc := &mockUserService{result: service.OKResult("profile retrieved", nil)}
	app := newUserApp(svc, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/9/profile", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, svc.lastRequester)
	require.Equal(t, uint(7), svc.lastRequester.ID)
	require.Equal(t, uint(9), svc.lastTargetID)
}

func TestUserHandlerProfileForbiddenPassthrough(t *testing.T) {
	svc := &mockUserService{result: service.ForbiddenResult("this profile is private")}
	app := newUserApp(svc, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/7/profile", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var env envelope
	decodeResponse(t, resp, &env)
	require.False(t, env.Success)
	require.Equal(t, "this profile is private", env.Message)
}

func TestUserHandlerMe(t *testing.T) {
	svc := &mockUserService{result: service.OKResult("profile retrieved", nil)}
	app := newUserApp(svc, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "ada", svc.lastRequester.Username)
}

func TestUserHandlerUpdateVisibility(t *testing.T) {
	svc := &mockUserService{result: service.OKResult("profile visibility updated", nil)}
	app := newUserApp(svc, true)

	body, err := json.Marshal(dto.VisibilityRequest{ProfileVisibility: "friends"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me/visibility", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "friends", svc.lastVisibility)
}

func TestUserHandlerUpdateVisibilityRequiresBody(t *testing.T) {
	svc := &mockUserService{result: service.OKResult("profile visibility updated", nil)}
	app := newUserApp(svc, true)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me/visibility", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
