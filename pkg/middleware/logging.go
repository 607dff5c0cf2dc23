package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/triptally/triptally/pkg/logger"
)

// RequestLogger logs every request with method, path, status, user and latency.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		userID, _ := GetUserID(r.Context())
		entry := logger.Log.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"user_id":     userID,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  chimw.GetReqID(r.Context()),
		})

		switch {
		case ww.Status() >= 500:
			entry.Error("request failed")
		case ww.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request ok")
		}
	})
}
