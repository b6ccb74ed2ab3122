package main

import (
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/manenim/window-limiter/pkg/limiter"
)

func newRouter(l limiter.RateLimiter, constraints []limiter.Constraint, gatherer prometheus.Gatherer, log *zap.Logger) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/").Subrouter()
	api.Use(rateLimit(l, constraints, log))
	api.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Pong!\n"))
	}).Methods(http.MethodGet)

	return r
}

// rateLimit limits each client IP under every constraint. A limiter error
// lets the request through.
func rateLimit(l limiter.RateLimiter, constraints []limiter.Constraint, log *zap.Logger) mux.MiddlewareFunc {
	retryAfter := strconv.Itoa(shortestWindow(constraints))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Check(r.Context(), "ip:"+clientIP(r), constraints...)
			if err != nil {
				log.Warn("limiter error, failing open", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func shortestWindow(constraints []limiter.Constraint) int {
	shortest := 0
	for _, c := range constraints {
		if shortest == 0 || c.Seconds < shortest {
			shortest = c.Seconds
		}
	}
	return shortest
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
