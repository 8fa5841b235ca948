package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "no headers",
			headers: map[string]string{},
			want:    "",
		},
		{
			name:    "bearer token",
			headers: map[string]string{"Authorization": "Bearer pw_abc123"},
			want:    "pw_abc123",
		},
		{
			name:    "bearer is case insensitive",
			headers: map[string]string{"Authorization": "bearer pw_abc123"},
			want:    "pw_abc123",
		},
		{
			name:    "bearer with extra whitespace",
			headers: map[string]string{"Authorization": "  Bearer   pw_abc123  "},
			want:    "pw_abc123",
		},
		{
			name:    "x-api-token fallback",
			headers: map[string]string{"X-API-Token": "pw_fallback"},
			want:    "pw_fallback",
		},
		{
			name:    "authorization without bearer prefix is ignored",
			headers: map[string]string{"Authorization": "Basic dXNlcjpwYXNz"},
			want:    "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				assert.Equal(t, tc.want, extractTokenFromHeader(c))
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		})
	}
}

func TestTokenAuthMiddlewareRejectsMissingToken(t *testing.T) {
	app := fiber.New()
	app.Use(TokenAuthMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
