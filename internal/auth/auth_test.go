package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/domain"
	"github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/internal/repository/memory"
	apperrors "github.com/MessyScribbles/Non-Complex-Ticket-Handling-webapp-w-integrated-AI/pkg/util"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	raw, meta, err := tm.GenerateToken("u1", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, meta.IssuedAt.Add(5*time.Minute), meta.ExpiresAt)

	parsed, err := tm.ParseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", parsed.SubjectID)
	assert.Equal(t, domain.RoleAdmin, parsed.Role)

	_, err = NewTokenManager("other", 5).ParseToken(raw)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	raw, _, err := tm.GenerateToken("u1", domain.RoleCustomer)
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(raw)
	assert.Error(t, err)
}

func TestPasswordPolicy(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short"), ErrWeakPassword)
	assert.NoError(t, ValidatePassword("long enough"))

	hash, err := HashPassword("long enough", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "long enough"))
	assert.Error(t, ComparePassword(hash, "wrong password"))
}

func TestMiddlewareAndRoleGuards(t *testing.T) {
	store := memory.NewStore()
	customer := &domain.User{Name: "C", Email: "c@example.com", Role: domain.RoleCustomer}
	require.NoError(t, store.Users().Create(context.Background(), customer))

	tm := NewTokenManager("secret", 5)
	token, _, err := tm.GenerateToken(customer.ID, domain.RoleCustomer)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.SendStatus(fiberErr.Code)
		}
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	mw := NewAuthMiddleware(tm, store.Users())
	ok := func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Actor().ID)
	}
	app.Get("/customer", mw.Handle, RequireCustomer(), ok)
	app.Get("/admin", mw.Handle, RequireAdmin(), ok)

	do := func(req *http.Request) (int, string) {
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	req := httptest.NewRequest(http.MethodGet, "/customer", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, body := do(req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, customer.ID, body)

	status, _ = do(httptest.NewRequest(http.MethodGet, "/customer?access_token="+token, nil))
	assert.Equal(t, http.StatusOK, status)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	status, _ = do(req)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(httptest.NewRequest(http.MethodGet, "/customer", nil))
	assert.Equal(t, http.StatusUnauthorized, status)
}
