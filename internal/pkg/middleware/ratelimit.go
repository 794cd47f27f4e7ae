package middleware

import (
	"errors"
	"net/http"
	"net/netip"
	"sync"

	"golang.org/x/time/rate"

	pkgerr "github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/err"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/httpx"
)

type keyFunc = func(r *http.Request) string

// Limits 每个 key 的速率（每秒）和突发上限；TrustedProxies 决定是否采信 X-Forwarded-For
type Limits struct {
	RPS            float64
	Burst          int
	TrustedProxies []netip.Prefix
}

// DefaultLimits 每个 key 每秒 5 次，瞬时突发 10 次
var DefaultLimits = Limits{RPS: 5, Burst: 10}

var errRateLimited = errors.New("请求频繁，稍后重试")

func RateLimit(next http.Handler, kf keyFunc, lim Limits) http.Handler {
	if lim.RPS <= 0 || lim.Burst <= 0 {
		lim.RPS, lim.Burst = DefaultLimits.RPS, DefaultLimits.Burst
	}
	limiter := struct {
		mu sync.Mutex
		m  map[string]*rate.Limiter
	}{m: map[string]*rate.Limiter{}}

	get := func(k string) *rate.Limiter {
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		if l, ok := limiter.m[k]; ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(lim.RPS), lim.Burst)
		limiter.m[k] = l
		return l
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k := kf(r)
		if k == "" {
			k = httpx.ClientIP(r, lim.TrustedProxies)
		}
		if !get(k).Allow() {
			w.Header().Set("Retry-After", "1")
			pkgerr.Fail(w, r, pkgerr.CodeTooManyRequests, errRateLimited, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// 从 cookie 获取访客键
func VisitorKey(r *http.Request) string {
	if c, err := r.Cookie(VisitorCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}
