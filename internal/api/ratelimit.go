package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/mechatrack/internal/errs"
	"github.com/erazemk/mechatrack/internal/logger"
)

// MsgRateLimited is returned when an auth endpoint is throttled.
const MsgRateLimited = "Too many attempts, try again later"

// RateLimiterStore counts attempts in a fixed window.
type RateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RateLimitPolicy defines the window and limits for one auth endpoint.
type RateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewRateLimitPolicy builds a policy; zero limits disable that dimension.
func NewRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// AuthRateLimit throttles attempts per client IP and per (hashed) email.
// Without a store the middleware is a pass-through.
func AuthRateLimit(policy RateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				ip := clientIP(r)
				key := fmt.Sprintf("rl:ip:%s:%s", policy.name, ip)
				ok, err := allow(ctx, store, key, policy.window, policy.ipLimit)
				if err != nil {
					writeError(ctx, logg, w, errs.Wrap(errs.CodeInternal, err, "rate limiting"))
					return
				}
				if !ok {
					rateLimited(ctx, logg, w, policy, "ip")
					return
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					writeError(ctx, logg, w, errs.Wrap(errs.CodeValidation, err, MsgInvalidBody))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := normalizeEmail(extractEmail(body)); email != "" {
					key := fmt.Sprintf("rl:email:%s:%s", policy.name, hashValue(email))
					ok, err := allow(ctx, store, key, policy.window, policy.emailLimit)
					if err != nil {
						writeError(ctx, logg, w, errs.Wrap(errs.CodeInternal, err, "rate limiting"))
						return
					}
					if !ok {
						rateLimited(ctx, logg, w, policy, "email")
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allow(ctx context.Context, store RateLimiterStore, key string, window time.Duration, limit int) (bool, error) {
	count, err := store.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}

func rateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy RateLimitPolicy, scope string) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy": policy.name,
			"scope":  scope,
		}), "auth.rate_limit.blocked")
	}
	writeError(ctx, logg, w, errs.New(errs.CodeRateLimited, MsgRateLimited))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
