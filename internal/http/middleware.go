package httpx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/naidizakupku/portal/internal/observability/metrics"
)

// deviceCookieTTL keeps the device id well past the credential lifetime.
const deviceCookieTTL = 365 * 24 * time.Hour

// Logging returns a middleware that logs HTTP requests and responses.
// Query strings are not logged since they may carry session ids.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// DeviceID returns a middleware that identifies the caller's device by an
// opaque random cookie, issuing one when absent or malformed. The id keys
// the client-only credential channel.
func DeviceID(cookieName, cookieDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			device := ""
			if c, err := r.Cookie(cookieName); err == nil {
				if id, parseErr := uuid.Parse(c.Value); parseErr == nil {
					device = id.String()
				}
			}
			if device == "" {
				device = uuid.NewString()
				setCookie(w, r, cookieSpec{Name: cookieName, Value: device, Domain: cookieDomain, TTL: deviceCookieTTL})
			}
			next.ServeHTTP(w, r.WithContext(SetDeviceInContext(r.Context(), device)))
		})
	}
}

// EdgeAccessFilter gates protected path prefixes on the presence of an
// edge-readable credential cookie. Validity is not checked here; requests
// without a bearer token or session id cookie are redirected to "/".
func EdgeAccessFilter(prefixes []string, rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isProtectedPath(r.URL.Path, prefixes) {
				next.ServeHTTP(w, r)
				return
			}
			if hasCookie(r, CookieToken) || hasCookie(r, CookieSessionID) {
				rec.EdgeDecision(metrics.EdgePass)
				next.ServeHTTP(w, r)
				return
			}
			rec.EdgeDecision(metrics.EdgeRedirect)
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		})
	}
}

// isProtectedPath matches a prefix exactly or as a leading path segment, so
// "/profile" covers "/profile/edit" but not "/profiles".
func isProtectedPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "/" {
			return true
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
