package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var kioskOrigins = []string{"https://kiosk.example.com"}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(kioskOrigins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/logs", nil)
	req.Header.Set("Origin", "https://kiosk.example.com")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "https://kiosk.example.com", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	assert.False(t, called)
}

func TestCORSSameOriginPassesThrough(t *testing.T) {
	h := CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for _, origin := range []string{"", "http://example.com"} {
		req := httptest.NewRequest(http.MethodPut, "/api/settings", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusTeapot, resp.Code, origin)
		assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestCORSRejectsForeignOrigin(t *testing.T) {
	called := 0
	h := CORS(kioskOrigins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	}))

	for _, method := range []string{http.MethodOptions, http.MethodPut, http.MethodPost, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/settings", nil)
		req.Header.Set("Origin", "https://evil.example.net")
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusForbidden, resp.Code, method)
		assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"), method)
	}
	assert.Zero(t, called)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, called)
}

func TestOriginAllowed(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/voice/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, OriginAllowed(nil, req("")))
	assert.True(t, OriginAllowed(nil, req("http://example.com")))
	assert.True(t, OriginAllowed(kioskOrigins, req("https://kiosk.example.com")))
	assert.False(t, OriginAllowed(kioskOrigins, req("https://evil.example.net")))
	assert.False(t, OriginAllowed(nil, req("https://kiosk.example.com")))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/settings", nil))

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "PUT", fields["method"])
		assert.Equal(t, int64(http.StatusCreated), fields["status"])
	}
}
