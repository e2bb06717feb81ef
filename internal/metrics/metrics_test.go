package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg, reg, false)
	require.NoError(t, err)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/items/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Param("id"))
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/items/:id", "200")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_request_duration_seconds"))
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg, reg, false)
	require.NoError(t, err)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/boom", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/boom", "418")))
}

func TestMiddlewareReturnsErrorToOuterChain(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg, reg, false)
	require.NoError(t, err)

	var seen error
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			seen = next(c)
			return seen
		}
	})
	e.Use(m.Middleware())
	e.GET("/boom", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	var he *echo.HTTPError
	require.True(t, errors.As(seen, &he))
	assert.Equal(t, http.StatusTeapot, he.Code)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/boom", "418")))
}

func TestNewToleratesRuntimeCollectorsTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, reg, true)
	require.NoError(t, err)

	other := prometheus.NewRegistry()
	_, err = New(other, other, true)
	assert.NoError(t, err)
}
