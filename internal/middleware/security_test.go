package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jpcadena/aws-session-management/internal/middleware"
)

func serve(t *testing.T, sec middleware.SecurityHeaders, path string) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	sec.Middleware(next).ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeadersSet(t *testing.T) {
	sec := middleware.SecurityHeaders{HSTSMaxAge: 31536000, CertTransparencyMaxAge: 86400}
	rec := serve(t, sec, "/api/v1/health")

	want := map[string]string{
		"Strict-Transport-Security":         "max-age=31536000; includeSubDomains; preload",
		"Expect-CT":                         "max-age=86400, enforce",
		"Cross-Origin-Embedder-Policy":      "unsafe-none",
		"Cross-Origin-Opener-Policy":        "same-origin",
		"Cross-Origin-Resource-Policy":      "cross-origin",
		"Referrer-Policy":                   "strict-origin-when-cross-origin",
		"Cache-Control":                     "no-cache",
		"X-Frame-Options":                   "DENY",
		"X-Content-Type-Options":            "nosniff",
		"X-XSS-Protection":                  "1; mode=block",
		"X-DNS-Prefetch-Control":            "off",
		"X-Download-Options":                "noopen",
		"X-Permitted-Cross-Domain-Policies": "none",
		"Access-Control-Allow-Origin":       "*",
	}
	for name, value := range want {
		if got := rec.Header().Get(name); got != value {
			t.Fatalf("header %s = %q, want %q", name, got, value)
		}
	}

	perms := rec.Header().Get("Permissions-Policy")
	if !strings.Contains(perms, "geolocation=(self)") || !strings.Contains(perms, "camera=()") {
		t.Fatalf("unexpected Permissions-Policy %q", perms)
	}
}

func TestSecurityHeadersDefaultPolicy(t *testing.T) {
	sec := middleware.SecurityHeaders{HSTSMaxAge: 1, CertTransparencyMaxAge: 1}
	rec := serve(t, sec, "/api/v1/session")

	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.HasPrefix(csp, "default-src 'self'; base-uri 'self'; block-all-mixed-content") {
		t.Fatalf("unexpected policy prefix: %q", csp)
	}
	if !strings.Contains(csp, "style-src 'self' https: 'unsafe-inline'") {
		t.Fatalf("missing style-src directive: %q", csp)
	}
	if !strings.Contains(csp, "require-trusted-types-for 'script'") {
		t.Fatalf("missing trusted types directive: %q", csp)
	}
	if strings.Contains(csp, "cdn.jsdelivr.net") {
		t.Fatalf("API routes must not allow the docs CDN: %q", csp)
	}
}

func TestSecurityHeadersSwaggerPolicy(t *testing.T) {
	sec := middleware.SecurityHeaders{HSTSMaxAge: 1, CertTransparencyMaxAge: 1, SwaggerSHAKey: "abc123"}

	for _, path := range []string{"/docs", "/redoc"} {
		rec := serve(t, sec, path)
		csp := rec.Header().Get("Content-Security-Policy")
		if !strings.Contains(csp, "script-src 'self' https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js 'sha256-abc123'") {
			t.Fatalf("missing swagger script-src on %s: %q", path, csp)
		}
		if !strings.Contains(csp, "frame-ancestors 'none'") {
			t.Fatalf("missing frame-ancestors on %s: %q", path, csp)
		}
	}
}

func TestSecurityHeadersReportOnly(t *testing.T) {
	sec := middleware.SecurityHeaders{HSTSMaxAge: 1, CertTransparencyMaxAge: 1, ReportOnly: true}
	rec := serve(t, sec, "/api/v1/health")

	if rec.Header().Get("Content-Security-Policy") != "" {
		t.Fatalf("expected no enforced policy in report-only mode")
	}
	if rec.Header().Get("Content-Security-Policy-Report-Only") == "" {
		t.Fatalf("expected report-only policy header")
	}
}

func TestSecurityHeadersNonces(t *testing.T) {
	sec := middleware.SecurityHeaders{HSTSMaxAge: 1, CertTransparencyMaxAge: 1, ScriptNonce: true, StyleNonce: true}
	rec := serve(t, sec, "/api/v1/health")

	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "script-src 'self' 'nonce-") {
		t.Fatalf("missing script nonce: %q", csp)
	}
	if !strings.Contains(csp, "'unsafe-inline' 'nonce-") {
		t.Fatalf("missing style nonce: %q", csp)
	}

	second := serve(t, sec, "/api/v1/health").Header().Get("Content-Security-Policy")
	if csp == second {
		t.Fatalf("nonces must differ between requests")
	}
}

func TestSecurityHeadersKeepExistingCORSOrigin(t *testing.T) {
	sec := middleware.SecurityHeaders{HSTSMaxAge: 1, CertTransparencyMaxAge: 1}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	rec.Header().Set("Access-Control-Allow-Origin", "https://app.example.com")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	sec.Middleware(next).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected explicit origin to survive, got %q", got)
	}
}

func TestNonceIsURLSafe(t *testing.T) {
	nonce := middleware.Nonce()
	if nonce == "" {
		t.Fatalf("expected non-empty nonce")
	}
	if strings.ContainsAny(nonce, "+/=") {
		t.Fatalf("nonce must be base64url without padding, got %q", nonce)
	}
}
