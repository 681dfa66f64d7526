package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-monitor/internal/usecase"
)

type fakeHealth struct{ st usecase.HealthStatus }

func (f fakeHealth) Check(context.Context) usecase.HealthStatus { return f.st }

func TestHealthHandler(t *testing.T) {
	for _, tc := range []struct {
		name string
		st   usecase.HealthStatus
		want int
	}{
		{"healthy", usecase.HealthStatus{DatabaseHealthy: true}, http.StatusOK},
		{"redis down still serves", usecase.HealthStatus{DatabaseHealthy: true, RedisHealthy: false}, http.StatusOK},
		{"database down", usecase.HealthStatus{}, http.StatusServiceUnavailable},
	} {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			NewHealthHandler(fakeHealth{st: tc.st}).RegisterRoutes(app)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
