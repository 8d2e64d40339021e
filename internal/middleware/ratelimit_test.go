package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"stayhub/internal/config"
)

func limitedRouter(cfg config.RateLimitConfig, rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/functions/otp/send", RateLimit(cfg, rdb, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/functions/otp/send", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksAfterCapacity(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Prefix:         "rl",
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Minute,
		KeyStrategy:    "ip_route",
	}
	r := limitedRouter(cfg, rdb)

	first := hit(r)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, hit(r).Code)

	blocked := hit(r)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "rate limit exceeded")

	assert.True(t, mr.Exists("rl:ip:10.0.0.1:route:POST /functions/otp/send"))
}

func TestRateLimit_DisabledOrNoRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false, Capacity: 1}
	r := limitedRouter(cfg, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r).Code)
	}

	cfg.Enabled = true
	r = limitedRouter(cfg, nil)
	assert.Equal(t, http.StatusOK, hit(r).Code)
}

func TestRateLimit_RedisDownAllows(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	cfg := config.RateLimitConfig{Enabled: true, Prefix: "rl", Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}
	assert.Equal(t, http.StatusOK, hit(limitedRouter(cfg, rdb)).Code)
}

func TestBuildRateKey_DefaultStrategy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Request.RemoteAddr = "1.2.3.4:80"

	key := buildRateKey(config.RateLimitConfig{Prefix: "p"}, c)
	assert.Equal(t, "p:ip:1.2.3.4:user:anon:route:GET ", key)
}
