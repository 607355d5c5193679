package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/probe", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterExhaustsBucket(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	r := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after bucket drained, got %d", code)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	r := limitedRouter(rl)

	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", code)
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("first client: expected 429, got %d", code)
	}
	if code := hit(r, "10.0.0.2"); code != http.StatusOK {
		t.Fatalf("second client should have its own bucket, got %d", code)
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	r := limitedRouter(rl)

	if code := hit(r, "10.0.0.3"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := hit(r, "10.0.0.3"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	time.Sleep(25 * time.Millisecond)

	if code := hit(r, "10.0.0.3"); code != http.StatusOK {
		t.Fatalf("expected 200 after refill window, got %d", code)
	}
}
