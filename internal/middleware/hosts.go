package middleware

import (
	"net"
	"strings"

	"storefront-service/internal/apperr"

	"github.com/labstack/echo/v4"
)

// AllowedHosts rejects requests whose Host header is not in hosts. "*" allows any host and
// an entry starting with "." also matches its subdomains.
func AllowedHosts(hosts []string) echo.MiddlewareFunc {
	allowAll := false
	for _, h := range hosts {
		if h == "*" {
			allowAll = true
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if allowAll {
				return next(c)
			}
			host := c.Request().Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			if !hostAllowed(strings.ToLower(host), hosts) {
				return apperr.Validation("invalid host header %q", c.Request().Host)
			}
			return next(c)
		}
	}
}

func hostAllowed(host string, hosts []string) bool {
	for _, pattern := range hosts {
		pattern = strings.ToLower(pattern)
		if strings.HasPrefix(pattern, ".") {
			if host == pattern[1:] || strings.HasSuffix(host, pattern) {
				return true
			}
			continue
		}
		if host == pattern {
			return true
		}
	}
	return false
}
