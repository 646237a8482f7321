// Package middleware provides HTTP middleware applied in front of the API
// routes, most notably the security header policy.
package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// Directive is a single Content-Security-Policy directive with its values.
// Directives render in slice order so policies stay stable across requests.
type Directive struct {
	Name   string
	Values []string
}

const swaggerCDN = "https://cdn.jsdelivr.net/npm/swagger-ui-dist@5"

// DefaultDirectives returns the restrictive policy applied to API routes.
func DefaultDirectives() []Directive {
	return []Directive{
		{Name: "default-src", Values: []string{"'self'"}},
		{Name: "base-uri", Values: []string{"'self'"}},
		{Name: "block-all-mixed-content"},
		{Name: "font-src", Values: []string{"'self'", "https:", "data:"}},
		{Name: "frame-ancestors", Values: []string{"'self'"}},
		{Name: "img-src", Values: []string{"'self'", "data:"}},
		{Name: "object-src", Values: []string{"'none'"}},
		{Name: "script-src", Values: []string{"'self'"}},
		{Name: "script-src-attr", Values: []string{"'none'"}},
		{Name: "style-src", Values: []string{"'self'", "https:", "'unsafe-inline'"}},
		{Name: "upgrade-insecure-requests"},
		{Name: "require-trusted-types-for", Values: []string{"'script'"}},
	}
}

// swaggerDirectives relaxes the policy enough for the Swagger UI page, which
// loads its bundle and stylesheet from the jsDelivr CDN.
func swaggerDirectives(shaKey string) []Directive {
	scriptSrc := []string{"'self'", swaggerCDN + "/swagger-ui-bundle.js"}
	if shaKey != "" {
		scriptSrc = append(scriptSrc, fmt.Sprintf("'sha256-%s'", shaKey))
	}
	return []Directive{
		{Name: "default-src", Values: []string{"'self'"}},
		{Name: "script-src", Values: scriptSrc},
		{Name: "style-src", Values: []string{"'self'", swaggerCDN + "/swagger-ui.css"}},
		{Name: "img-src", Values: []string{"'self'", "data:", "https:"}},
		{Name: "font-src", Values: []string{"'self'", "https:", "data:"}},
		{Name: "connect-src", Values: []string{"'self'", "https:"}},
		{Name: "frame-ancestors", Values: []string{"'none'"}},
	}
}

// SecurityHeaders applies a hardened header set to every response.
type SecurityHeaders struct {
	HSTSMaxAge             int
	CertTransparencyMaxAge int

	// SwaggerSHAKey is the sha256 of the inline Swagger UI bootstrap
	// script, allowed through the documentation CSP.
	SwaggerSHAKey string

	// ScriptNonce and StyleNonce add a per-request nonce to the matching
	// CSP directive.
	ScriptNonce bool
	StyleNonce  bool

	// ReportOnly switches to Content-Security-Policy-Report-Only so policy
	// violations are reported without being enforced.
	ReportOnly bool

	// Directives overrides the default policy for API routes when set.
	Directives []Directive
}

const nonceEntropy = 90

// Nonce returns a fresh base64url value suitable for CSP nonces.
func Nonce() string {
	b := make([]byte, nonceEntropy)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// docPathPrefixes are served with the relaxed Swagger policy.
var docPathPrefixes = []string{"/docs", "/redoc"}

func isDocPath(path string) bool {
	for _, prefix := range docPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware wraps next, setting the security headers before the handler
// writes the response.
func (s SecurityHeaders) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		cspHeader := "Content-Security-Policy"
		if s.ReportOnly {
			cspHeader = "Content-Security-Policy-Report-Only"
		}
		h.Set(cspHeader, s.policyFor(r.URL.Path))

		h.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains; preload", s.HSTSMaxAge))
		h.Set("Expect-CT", fmt.Sprintf("max-age=%d, enforce", s.CertTransparencyMaxAge))
		h.Set("Cross-Origin-Embedder-Policy", "unsafe-none")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy",
			"geolocation=(self), microphone=(), camera=(), fullscreen=(self), "+
				"accelerometer=(), gyroscope=(), magnetometer=(), payment=(), usb=()")
		h.Set("Cache-Control", "no-cache")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")

		if h.Get("Access-Control-Allow-Origin") == "" {
			h.Set("Access-Control-Allow-Origin", "*")
		}

		next.ServeHTTP(w, r)
	})
}

// policyFor renders the CSP for the given request path.
func (s SecurityHeaders) policyFor(path string) string {
	var directives []Directive
	if isDocPath(path) {
		directives = swaggerDirectives(s.SwaggerSHAKey)
	} else if s.Directives != nil {
		directives = s.Directives
	} else {
		directives = DefaultDirectives()
	}

	var scriptNonce, styleNonce string
	if s.ScriptNonce {
		scriptNonce = "'nonce-" + Nonce() + "'"
	}
	if s.StyleNonce {
		styleNonce = "'nonce-" + Nonce() + "'"
	}

	parts := make([]string, 0, len(directives))
	for _, d := range directives {
		values := d.Values
		switch d.Name {
		case "script-src":
			if scriptNonce != "" {
				values = append(append([]string{}, values...), scriptNonce)
			}
		case "style-src":
			if styleNonce != "" {
				values = append(append([]string{}, values...), styleNonce)
			}
		}

		if len(values) == 0 {
			parts = append(parts, d.Name)
			continue
		}
		parts = append(parts, d.Name+" "+strings.Join(values, " "))
	}
	return strings.Join(parts, "; ")
}
