package api

import (
	"net/http"
)

// ListManifests возвращает опубликованные DAG.
// GET /api/v1/manifests
func (h *Handler) ListManifests(w http.ResponseWriter, r *http.Request) {
	if h.manifests == nil {
		Unavailable(w, "manifest store is not configured")
		return
	}

	ids, err := h.manifests.DagIDs(r.Context())
	if HandleError(w, h.logger, err, "") {
		return
	}

	result := make([]ManifestSummary, 0, len(ids))
	for _, id := range ids {
		s := ManifestSummary{DagID: id}
		if h.index != nil {
			if p, ok := h.index.Get(id); ok {
				s = SummaryFromAnnouncement(p)
			}
		}
		result = append(result, s)
	}
	List(w, result, len(result))
}

// GetManifest возвращает манифест DAG.
// GET /api/v1/manifests/{dag_id}
func (h *Handler) GetManifest(w http.ResponseWriter, r *http.Request) {
	if h.manifests == nil {
		Unavailable(w, "manifest store is not configured")
		return
	}

	dagID := r.PathValue("dag_id")
	if dagID == "" {
		BadRequest(w, "dag_id is required")
		return
	}

	m, err := h.manifests.Manifest(r.Context(), dagID)
	if HandleError(w, h.logger, err, "manifest not found") {
		return
	}
	Success(w, m)
}

// ListAnnouncements возвращает последние объявления из очереди.
// GET /api/v1/announcements
func (h *Handler) ListAnnouncements(w http.ResponseWriter, _ *http.Request) {
	if h.index == nil {
		List(w, []ManifestSummary{}, 0)
		return
	}

	snap := h.index.Snapshot()
	result := make([]ManifestSummary, 0, len(snap))
	for _, p := range snap {
		result = append(result, SummaryFromAnnouncement(p))
	}
	List(w, result, len(result))
}

// Preview собирает конфигурацию сервера без публикации.
// GET /api/v1/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.preview == nil {
		Unavailable(w, "composition is not configured")
		return
	}

	manifests, err := h.preview(r.Context())
	if HandleError(w, h.logger, err, "") {
		return
	}

	result := make([]PreviewResponse, 0, len(manifests))
	for _, m := range manifests {
		result = append(result, PreviewFromManifest(m))
	}
	List(w, result, len(result))
}
