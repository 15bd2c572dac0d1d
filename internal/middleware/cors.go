package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// CORS 只向白名单中的来源开放跨域访问。来自其他来源的预检和写请求直接拒绝，
// 读请求照常处理但不带 Allow-Origin，浏览器因此拿不到响应内容。
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || sameHost(origin, r.Host) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if !slices.Contains(allowed, strings.TrimRight(origin, "/")) {
				if r.Method != http.MethodGet && r.Method != http.MethodHead {
					http.Error(w, "origin not allowed", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
			h.Set("Access-Control-Expose-Headers", "Content-Disposition")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OriginAllowed reports whether r comes from the serving host, carries no
// Origin at all, or comes from one of allowed.
func OriginAllowed(allowed []string, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || sameHost(origin, r.Host) {
		return true
	}
	return slices.Contains(allowed, strings.TrimRight(origin, "/"))
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}
