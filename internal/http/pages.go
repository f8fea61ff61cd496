package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// newPagesHandler forwards page requests to the renderer at origin. Without
// an origin every page answers 404.
func newPagesHandler(origin string, logger *slog.Logger) (http.Handler, error) {
	if origin == "" {
		return http.HandlerFunc(notFound), nil
	}
	target, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse pages origin: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("pages origin must be an absolute URL")
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.WarnContext(r.Context(), "page renderer unreachable", "path", r.URL.Path, "error", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		},
	}, nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: "not_found",
		Err:     fmt.Errorf("no route for %s", r.URL.Path),
	})
}
