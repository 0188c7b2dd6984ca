package httpx

import (
	"net/http"
	"strconv"
)

// ListProducts serves the catalog. Public, cached. The query parameters
// category, available and popular select database-backed variants.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	switch {
	case q.Get("category") != "":
		views, err := h.catalog.ListByCategory(ctx, q.Get("category"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
	case q.Get("popular") == "true":
		views, err := h.catalog.ListPopular(ctx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
	case q.Get("available") == "true":
		views, err := h.catalog.ListAvailable(ctx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
	default:
		views, err := h.catalog.ListProducts(ctx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// ListNotifications returns the caller's inbox, newest first. The limit
// query parameter is capped server-side.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifs, err := h.notifier.Inbox(r.Context(), user, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]NotificationResponse, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, mapNotificationToResponse(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.notifier.MarkRead(r.Context(), user, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.notifier.Dismiss(r.Context(), user, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTables returns the floor plan.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustUser(w, r); !ok {
		return
	}

	tables, err := h.tables.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]TableResponse, 0, len(tables))
	for _, t := range tables {
		out = append(out, mapTableToResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) StartTableSession(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req StartSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TableID == 0 || req.GuestID == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "table_id and guest_id are required")
		return
	}

	session, err := h.tables.StartSession(r.Context(), user, req.TableID, req.GuestID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapSessionToResponse(session))
}

func (h *Handler) CloseTableSession(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := h.tables.CloseSession(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSessionToResponse(session))
}
