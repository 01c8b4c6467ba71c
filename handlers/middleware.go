package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/unrolled/secure"
)

// NewSecure adds security headers. Project images live on other hosts, so
// img-src is open.
func NewSecure(isDevelopment bool) mux.MiddlewareFunc {
	s := secure.New(secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'self'; img-src * data:",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	})
	return s.Handler
}

// LimitPosts throttles POSTs per client IP, which bounds password guessing
// against the shared secret. rateFormatted uses the limiter format
// ("30-M", "5-S"); empty disables.
func LimitPosts(rateFormatted string) (mux.MiddlewareFunc, error) {
	if rateFormatted == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}
	mw := stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate))
	return func(next http.Handler) http.Handler {
		limited := mw.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}, nil
}
