package httpx

import (
	"context"
	"net/http"

	"github.com/naidizakupku/portal/internal/domain/model"
)

// SourceHeader reports whether a degrading proxy answered from the live
// backend, the cache, or the static fallback.
const SourceHeader = "X-Content-Source"

// ContentService is the degrading proxy surface used by ContentHandlers.
type ContentService interface {
	TopNews(ctx context.Context) (model.NewsEnvelope, string)
	ProjectInfo(ctx context.Context) (model.ProjectInfoEnvelope, string)
}

// ContentHandlers serves the news and project statistics proxies. Both
// always answer 200.
type ContentHandlers struct {
	Svc ContentService
}

// TopNews handles GET /api/news/top.
func (h *ContentHandlers) TopNews(w http.ResponseWriter, r *http.Request) {
	env, source := h.Svc.TopNews(r.Context())
	w.Header().Set(SourceHeader, source)
	WriteJSON(w, http.StatusOK, env)
}

// ProjectInfo handles GET /api/admin/common/info.
func (h *ContentHandlers) ProjectInfo(w http.ResponseWriter, r *http.Request) {
	env, source := h.Svc.ProjectInfo(r.Context())
	w.Header().Set(SourceHeader, source)
	WriteJSON(w, http.StatusOK, env)
}
