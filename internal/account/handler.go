package account

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kavya-apps/userhub/internal/middleware"
	"github.com/kavya-apps/userhub/internal/models"
	"github.com/kavya-apps/userhub/internal/upload"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the uniform error body. Internal failures are logged
// and reported generically.
func writeError(w http.ResponseWriter, err error) {
	status := errStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAssetUpload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// tokenResponse is the body for register and login.
type tokenResponse struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	Data    models.Summary `json:"data"`
}

// Handler holds the account HTTP handlers.
type Handler struct {
	svc     *Service
	staging *upload.Staging
}

func NewHandler(svc *Service, staging *upload.Staging) *Handler {
	return &Handler{svc: svc, staging: staging}
}

// Register creates a new account and logs it straight in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Phone == 0 || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username, email, phone, and password are required"})
		return
	}

	token, summary, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Message: "Logged In", Token: token, Data: summary})
}

// Login authenticates by email and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "please enter all fields"})
		return
	}

	token, summary, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Message: "Logged In", Token: token, Data: summary})
}

// UpdateProfile overwrites the caller's profile from multipart form fields
// plus an optional avatar file.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized access"})
		return
	}

	avatarPath, err := h.staging.Stage(r, "avatar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	// Staged copies never outlive the request, whatever the outcome.
	defer h.staging.Discard(avatarPath)

	phone, err := strconv.ParseInt(r.FormValue("phone"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone must be numeric"})
		return
	}

	summary, err := h.svc.UpdateProfile(r.Context(), id.UserID, ProfileUpdate{
		Username:   r.FormValue("username"),
		Email:      r.FormValue("email"),
		Phone:      phone,
		AvatarPath: avatarPath,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Updated successfully",
		"user":    summary,
	})
}

// DeleteProfile removes the target account. Succeeds with a null user when
// the id no longer exists.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized access"})
		return
	}

	summary, err := h.svc.DeleteProfile(r.Context(), id.UserID, id.Role, chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile deleted successfully",
		"user":    summary,
	})
}

// ListUsers returns every account except the caller's. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized access"})
		return
	}

	users, err := h.svc.ListUsers(r.Context(), id.UserID, id.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// GetUserByID is the public profile read.
func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Upload is the standalone image upload utility.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	path, err := h.staging.Stage(r, "image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	if path == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "image is missing"})
		return
	}
	defer h.staging.Discard(path)

	url, err := h.svc.UploadImage(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Upload was successful",
		"url":     url,
	})
}

// Events lists the newest audit entries. Admin only (also gated by
// middleware at the router).
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized access"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := h.svc.RecentEvents(r.Context(), id.Role, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
