package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/cppla/questhub/config"
	"github.com/cppla/questhub/utils"
)

const adminAddr = "0x000000000000000000000000000000000000AdD1"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Override(config.AppConfig{
		JWTSecret:          "test-secret",
		RedisDisabled:      true,
		RateLimitPerMinute: 4,
		AdminAddresses:     []string{" " + adminAddr + " "},
	})
	os.Exit(m.Run())
}

func serve(r *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestIsAdminIgnoresCaseAndSpace(t *testing.T) {
	require.True(t, IsAdmin(adminAddr))
	require.True(t, IsAdmin("0x000000000000000000000000000000000000add1"))
	require.False(t, IsAdmin("0x0000000000000000000000000000000000000B0b"))
}

func TestAuthAndAdminChain(t *testing.T) {
	r := gin.New()
	r.GET("/x", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		addr, ok := AddressFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, addr)
	})

	require.Equal(t, http.StatusUnauthorized, serve(r, ""))
	require.Equal(t, http.StatusUnauthorized, serve(r, "junk"))

	user, err := utils.GenerateToken("0x0000000000000000000000000000000000000B0b", time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, serve(r, user))

	admin, err := utils.GenerateToken(adminAddr, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, serve(r, admin))
}

func TestRateLimitPerAddress(t *testing.T) {
	r := gin.New()
	r.GET("/x", AuthRequired(), RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// 4 per minute gives a burst of 2
	first, err := utils.GenerateToken("0x00000000000000000000000000000000000A11cE", time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, serve(r, first))
	require.Equal(t, http.StatusOK, serve(r, first))
	require.Equal(t, http.StatusTooManyRequests, serve(r, first))

	// a different wallet has its own bucket
	second, err := utils.GenerateToken("0x00000000000000000000000000000000000CA501", time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, serve(r, second))
}
