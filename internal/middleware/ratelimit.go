package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/soniahiltner/finance-tracker-sub001/internal/ratelimit"
)

// Rejection messages per policy. The auth policy message is deliberately
// distinct so clients can tell a lockout from generic throttling.
const (
	msgTooManyRequests = "Too many requests, please try again later"
	msgTooManyAI       = "Too many AI requests, please try again later"
	msgAuthLockout     = "Too many failed login attempts, account temporarily locked. Please try again later"
)

// RateLimit returns the standard fixed-window policy middleware keyed by
// caller IP: general API and AI traffic use this with different limiters
// and messages. Check-and-increment happens before the handler runs, so
// floods are rejected without touching business logic.
func RateLimit(l *ratelimit.Limiter, message string) echo.MiddlewareFunc {
	if l == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			out := l.Allow(clientIP(c))
			setRateHeaders(c, out)
			if !out.Allowed {
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success": false,
					"message": message,
				})
			}
			return next(c)
		}
	}
}

// AuthRateLimit returns the auth-endpoint policy: keyed by IP plus the
// normalized email when the body carries one, and counting only failed
// attempts. The budget is peeked before the handler; a failure (4xx/5xx
// response or handler error) consumes one unit afterwards, so successful
// logins never eat into the quota. Rejections carry a numeric retryAfter
// in seconds, never below 1.
func AuthRateLimit(l *ratelimit.Limiter) echo.MiddlewareFunc {
	if l == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := authKey(c)
			out := l.Peek(key)
			setRateHeaders(c, out)
			if !out.Allowed {
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success":    false,
					"message":    msgAuthLockout,
					"retryAfter": out.RetryAfter,
				})
			}

			err := next(c)
			if err != nil || c.Response().Status >= http.StatusBadRequest {
				l.RecordFailure(key)
			}
			return err
		}
	}
}

// passthrough is used when a limiter is disabled by configuration.
func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error { return next(c) }
}

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// authKey builds "ip" or "ip|email" for the auth policy. The email is read
// from a copy of the JSON body; the body is restored so later stages can
// still consume it.
func authKey(c echo.Context) string {
	key := clientIP(c)
	if email := peekEmail(c); email != "" {
		key += "|" + email
	}
	return key
}

func peekEmail(c echo.Context) string {
	req := c.Request()
	if req.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(req.Body, 1<<20))
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

// setRateHeaders exposes informational limit metadata on every response
// that passed through a limiter.
func setRateHeaders(c echo.Context, out ratelimit.Outcome) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(out.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(out.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(out.Reset.Unix(), 10))
}
