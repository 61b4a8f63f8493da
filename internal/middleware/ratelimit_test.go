package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimit_AllowsNormalRequests(t *testing.T) {
	rl := NewRateLimiter(10, 10) // 10 rps, burst 10
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// First request should pass
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRateLimit_BlocksExcessiveRequests(t *testing.T) {
	rl := NewRateLimiter(1, 2) // 1 rps, burst 2
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Send burst+1 requests rapidly, last one should be blocked
	var lastCode int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(w, req)
		lastCode = w.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected status %d after burst exceeded, got %d", http.StatusTooManyRequests, lastCode)
	}
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1) // 1 rps, burst 1
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// First IP uses its burst
	w1 := httptest.NewRecorder()
	req1, _ := http.NewRequest("GET", "/test", nil)
	req1.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Errorf("IP1 first request: expected %d, got %d", http.StatusOK, w1.Code)
	}

	// Second IP should still have its own burst
	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/test", nil)
	req2.RemoteAddr = "10.0.0.2:12345"
	router.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Errorf("IP2 first request: expected %d, got %d", http.StatusOK, w2.Code)
	}
}

func TestRateLimit_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")
	rl.mu.Lock()
	rl.limiters["10.0.0.1"].lastSeen = time.Now().Add(-10 * time.Minute)
	rl.mu.Unlock()

	if evicted := rl.evictIdle(5 * time.Minute); evicted != 1 {
		t.Errorf("expected 1 evicted entry, got %d", evicted)
	}
	if _, ok := rl.limiters["10.0.0.2"]; !ok {
		t.Error("recently seen IP should be kept")
	}
}
