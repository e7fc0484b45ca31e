package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const RedisRateLimitKeyPrefix = "ratelimit"

// RateLimitMiddleware counts requests per client and route in fixed Redis windows.
//
// The client is the TCP peer. X-Forwarded-For is only read when the peer is
// one of the trusted proxies.
type RateLimitMiddleware struct {
	redisClient    redis.UniversalClient
	log            *logrus.Logger
	limit          int
	window         time.Duration
	trustedProxies []netip.Prefix
}

// NewRateLimitMiddleware accepts trusted proxies as single IPs or CIDRs.
// Entries that parse as neither are logged and ignored.
func NewRateLimitMiddleware(redisClient redis.UniversalClient, log *logrus.Logger, limit int, window time.Duration, trustedProxies []string) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		redisClient: redisClient,
		log:         log,
		limit:       limit,
		window:      window,
	}
	for _, raw := range trustedProxies {
		prefix, err := parseProxy(raw)
		if err != nil {
			log.Warnf("Ignoring trusted proxy %q: %+v", raw, err)
			continue
		}
		m.trustedProxies = append(m.trustedProxies, prefix)
	}
	return m
}

func parseProxy(raw string) (netip.Prefix, error) {
	if strings.Contains(raw, "/") {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Prefix{}, err
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("%s:%s:%s", RedisRateLimitKeyPrefix, r.URL.Path, m.clientIP(r))
		count, err := m.redisClient.Incr(r.Context(), key).Result()
		if err != nil {
			// Redis trouble must not lock users out.
			m.log.Warnf("Failed to increment rate limit counter: %+v", err)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := m.redisClient.Expire(r.Context(), key, m.window).Err(); err != nil {
				m.log.Warnf("Failed to set rate limit window: %+v", err)
			}
		}

		remaining := m.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > m.limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(m.window.Seconds())))
			response.TooManyRequests(w, "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP walks X-Forwarded-For from the right while the hops are trusted
// proxies and returns the first hop that is not.
func (m *RateLimitMiddleware) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !m.trusted(host) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !m.trusted(hop) {
			return hop
		}
		host = hop
	}
	return host
}

func (m *RateLimitMiddleware) trusted(ip string) bool {
	if len(m.trustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range m.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
