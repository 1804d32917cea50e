package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/finbook/internal/auth/session"
	"github.com/smallbiznis/finbook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestCookieNameFromConfig(t *testing.T) {
	m := session.NewManager(config.Config{})
	assert.Equal(t, "finbook_session", m.CookieName())

	m = session.NewManager(config.Config{AuthCookieName: "custom_sid"})
	assert.Equal(t, "custom_sid", m.CookieName())
}

func TestReadTokenRequiresNonBlankCookie(t *testing.T) {
	m := session.NewManager(config.Config{})

	c, _ := testContext(t)
	_, ok := m.ReadToken(c)
	assert.False(t, ok)

	c, _ = testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: m.CookieName(), Value: "  "})
	_, ok = m.ReadToken(c)
	assert.False(t, ok)

	c, _ = testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: m.CookieName(), Value: "tok123"})
	token, ok := m.ReadToken(c)
	assert.True(t, ok)
	assert.Equal(t, "tok123", token)
}

func TestSetAlignsLifetimeWithExpiry(t *testing.T) {
	m := session.NewManager(config.Config{})

	c, rec := testContext(t)
	m.Set(c, "tok123", time.Now().Add(time.Hour))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, m.CookieName(), cookie.Name)
	assert.Equal(t, "tok123", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.InDelta(t, 3600, cookie.MaxAge, 5)

	// An already-expired session never outlives the response.
	c, rec = testContext(t)
	m.Set(c, "tok123", time.Now().Add(-time.Minute))
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.LessOrEqual(t, cookies[0].MaxAge, 0)
}

func TestClearExpiresCookie(t *testing.T) {
	m := session.NewManager(config.Config{})

	c, rec := testContext(t)
	m.Clear(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
