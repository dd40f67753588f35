package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/caps-platform/scheduling-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// --- Global rate limiting (per-IP, 1/s, burst 10) ---

var (
	globalEntries    = make(map[string]*limiterEntry)
	globalEntriesMu  sync.Mutex
	globalCleanupRun bool
)

const (
	globalRateLimitRPS    = 1
	globalRateLimitBurst  = 10
	globalCleanupInterval = 5 * time.Minute
	globalLimiterTTL      = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

func getGlobalLimiter(ip string) *rate.Limiter {
	globalEntriesMu.Lock()
	defer globalEntriesMu.Unlock()
	startGlobalCleanupOnce()
	e, ok := globalEntries[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst),
			lastUse: time.Now(),
		}
		globalEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startGlobalCleanupOnce() {
	if globalCleanupRun {
		return
	}
	globalCleanupRun = true
	go func() {
		ticker := time.NewTicker(globalCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			globalEntriesMu.Lock()
			now := time.Now()
			for ip, e := range globalEntries {
				if now.Sub(e.lastUse) > globalLimiterTTL {
					delete(globalEntries, ip)
				}
			}
			globalEntriesMu.Unlock()
		}
	}()
}

// GlobalRateLimit limits each IP to 1 req/s, burst 10. Returns 429 when exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		if !getGlobalLimiter(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many requests. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Booking route rate limiting (1 req/5s, burst 3) ---
// Matching runs a multi-query search per call; these routes get a stricter
// limit so one client cannot hammer the slot store.

var (
	bookingEntries    = make(map[string]*limiterEntry)
	bookingEntriesMu  sync.Mutex
	bookingCleanupRun bool
)

const (
	bookingRateLimitEvery  = 5 * time.Second
	bookingRateLimitBurst  = 3
	bookingCleanupInterval = 5 * time.Minute
	bookingLimiterTTL      = 30 * time.Minute
)

var bookingPaths = map[string]bool{
	"/api/availability":          true,
	"/api/slots/student/request": true,
}

func getBookingLimiter(ip string) *rate.Limiter {
	bookingEntriesMu.Lock()
	defer bookingEntriesMu.Unlock()
	startBookingCleanupOnce()
	e, ok := bookingEntries[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(bookingRateLimitEvery), bookingRateLimitBurst),
			lastUse: time.Now(),
		}
		bookingEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startBookingCleanupOnce() {
	if bookingCleanupRun {
		return
	}
	bookingCleanupRun = true
	go func() {
		ticker := time.NewTicker(bookingCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			bookingEntriesMu.Lock()
			now := time.Now()
			for ip, e := range bookingEntries {
				if now.Sub(e.lastUse) > bookingLimiterTTL {
					delete(bookingEntries, ip)
				}
			}
			bookingEntriesMu.Unlock()
		}
	}()
}

// BookingRateLimit applies the stricter limit to the matching routes only.
// Use after GlobalRateLimit.
func BookingRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !bookingPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientip.RealClientIP(r)
		if !getBookingLimiter(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many scheduling requests. Please try again shortly."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns the middleware chain for production:
// SecurityHeaders → GlobalRateLimit → BookingRateLimit.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		GlobalRateLimit,
		BookingRateLimit,
	}
}
