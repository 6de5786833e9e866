package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/form", ok)
	e.POST("/submit", ok)
	e.POST("/health/ready", ok)
	return e
}

func fetchToken(t *testing.T, e *echo.Echo) (string, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return token, cookies[0]
}

func TestUnsafeMethodNeedsMatchingToken(t *testing.T) {
	e := newServer()
	token, cookie := fetchToken(t, e)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCrossOriginRejected(t *testing.T) {
	e := newServer()
	token, cookie := fetchToken(t, e)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Host = "example.com"
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSkipPrefixes(t *testing.T) {
	e := newServer()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health/ready", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
