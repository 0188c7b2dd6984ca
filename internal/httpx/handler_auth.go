package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/restoflow/restoflow/internal/service"
)

func serviceUpdate(req UpdateUserRequest) service.UserUpdate {
	return service.UserUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	}
}

// Register creates an account and returns a token so clients can log in
// straight away.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: mapUserToResponse(user)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: mapUserToResponse(user)})
}

// ListUsers is the admin account listing.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}

	users, err := h.users.List(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, mapUserToResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), user, chi.URLParam(r, "email")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.users.Update(r.Context(), user, chi.URLParam(r, "email"), serviceUpdate(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUserToResponse(updated))
}

func (h *Handler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req VoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.users.SubmitVote(r.Context(), user, chi.URLParam(r, "email"), req.Vote)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUserToResponse(updated))
}

// pathID parses a numeric URL parameter, writing the 400 itself on
// malformed input.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+name)
		return 0, false
	}
	return id, true
}
