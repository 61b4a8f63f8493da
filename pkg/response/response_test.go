package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/test", nil)
	handler(c)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, map[string]string{"username": "user123"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	if resp.Message != "ok" {
		t.Errorf("expected message 'ok', got %q", resp.Message)
	}
}

func TestCreated(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Created(c, map[string]string{"id": "a1"})
	})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if resp := parseResponse(t, w); resp.Message != "created" {
		t.Errorf("expected message 'created', got %q", resp.Message)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		code   int
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "bad") }, http.StatusBadRequest, 400},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "who") }, http.StatusUnauthorized, 401},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "no") }, http.StatusForbidden, 403},
		{"not found", func(c *gin.Context) { NotFound(c, "gone") }, http.StatusNotFound, 404},
		{"server error", func(c *gin.Context) { ServerError(c, "boom") }, http.StatusInternalServerError, 500},
		{"bad gateway", func(c *gin.Context) { BadGateway(c, "store down") }, http.StatusBadGateway, 502},
		{"too many", func(c *gin.Context) { TooManyRequests(c, "slow down") }, http.StatusTooManyRequests, 429},
		{"abort", func(c *gin.Context) { Abort(c, NewConflict("dup")) }, http.StatusConflict, 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(tt.call)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			if resp := parseResponse(t, w); resp.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, resp.Code)
			}
		})
	}
}

func TestError_WithAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, NewBadRequest("username is required"))
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	resp := parseResponse(t, w)
	if resp.Message != "username is required" {
		t.Errorf("expected message 'username is required', got %q", resp.Message)
	}
}

func TestError_WithWrappedAppError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, fmt.Errorf("create: %w", NewBadGateway("store unavailable")))
	})

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected status %d, got %d", http.StatusBadGateway, w.Code)
	}
	if resp := parseResponse(t, w); resp.Message != "store unavailable" {
		t.Errorf("expected unwrapped message, got %q", resp.Message)
	}
}

func TestError_WithGenericError(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Error(c, errors.New("something went wrong"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestAppError_ErrorInterface(t *testing.T) {
	err := NewNotFound("system user not found")
	if err.Error() != "system user not found" {
		t.Errorf("expected 'system user not found', got %q", err.Error())
	}
}
