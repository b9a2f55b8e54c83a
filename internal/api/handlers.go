// Package api exposes HTTP handlers for the work tracker backend.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/auth"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/observability"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	ingest       *domain.IngestService
	users        *domain.UserService
	reports      *domain.ReportService
	authConfig   auth.Config
	daemonAPIKey string
	limiter      *IngestLimiter
}

// NewHandler builds a Handler.
func NewHandler(ingest *domain.IngestService, users *domain.UserService, reports *domain.ReportService, authConfig auth.Config, daemonAPIKey string, limiter *IngestLimiter) *Handler {
	return &Handler{
		ingest:       ingest,
		users:        users,
		reports:      reports,
		authConfig:   authConfig,
		daemonAPIKey: daemonAPIKey,
		limiter:      limiter,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activity", h.receiveActivity)
	mux.HandleFunc("/v1/auth/token", h.login)
	mux.HandleFunc("/v1/users/me", h.userMe)
	mux.HandleFunc("/v1/users/me/password", h.changeOwnPassword)
	mux.HandleFunc("/v1/admin/users", h.adminUsers)
	mux.HandleFunc("/v1/admin/users/", h.adminUserByID)
	mux.HandleFunc("/v1/admin/teams", h.adminTeams)
	mux.HandleFunc("/v1/admin/installers/", h.adminInstaller)
	mux.HandleFunc("/v1/dashboard/me", h.dashboardMe)
	mux.HandleFunc("/v1/dashboard/team", h.dashboardTeam)
	mux.HandleFunc("/v1/dashboard/team/", h.dashboardTeamMember)
	mux.HandleFunc("/v1/dashboard/company", h.dashboardCompany)
	mux.HandleFunc("/healthz", healthz)
}

// AuthSkipper reports which routes bypass bearer authentication: health
// checks, login, metrics, and the daemon endpoint (which authenticates with
// the shared API key instead).
func AuthSkipper(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics", "/v1/auth/token", "/v1/activity":
		return true
	}
	return false
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ActivityLogEntry is one raw sample in the daemon payload.
type ActivityLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state"`
	App       string    `json:"app,omitempty"`
	Title     string    `json:"title,omitempty"`
	Duration  int       `json:"duration,omitempty"`
}

// ActivityPayload is the batch body for POST /v1/activity.
type ActivityPayload struct {
	EmployeeID string             `json:"employee_id"`
	Logs       []ActivityLogEntry `json:"logs"`
}

// Validate ensures request correctness.
func (p ActivityPayload) Validate() error {
	if strings.TrimSpace(p.EmployeeID) == "" {
		return errors.New("employee_id is required")
	}
	for _, entry := range p.Logs {
		if entry.Timestamp.IsZero() {
			return errors.New("every log entry requires a timestamp")
		}
		if entry.State != domain.StateActive && entry.State != domain.StateIdle {
			return errors.New("state must be active or idle")
		}
	}
	return nil
}

// IngestResponse is the body returned to the daemon.
type IngestResponse struct {
	Status        string `json:"status"`
	LogsProcessed int    `json:"logs_processed"`
}

func (h *Handler) receiveActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	if r.Header.Get("X-API-Key") != h.daemonAPIKey {
		writeError(w, http.StatusForbidden, "forbidden", "invalid or missing API key")
		return
	}

	var payload ActivityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if h.limiter != nil && !h.limiter.allow(payload.EmployeeID) {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many batches, slow down")
		return
	}

	samples := make([]domain.RawSample, len(payload.Logs))
	for i, entry := range payload.Logs {
		samples[i] = domain.RawSample{
			Timestamp:       entry.Timestamp,
			State:           entry.State,
			App:             entry.App,
			Title:           entry.Title,
			DurationSeconds: entry.Duration,
		}
	}

	count, err := h.ingest.IngestBatch(r.Context(), payload.EmployeeID, samples)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "employee ID '"+payload.EmployeeID+"' not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	observability.RecordBatchIngested(count)
	writeJSON(w, http.StatusOK, IngestResponse{Status: "ok", LogsProcessed: count})
}

// LoginRequest is the body for POST /v1/auth/token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "incorrect username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	token, err := auth.Issue(user.Email, user.Role, h.authConfig)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// UserView exposes account details without credentials.
type UserView struct {
	ID         int64   `json:"id"`
	EmployeeID string  `json:"employee_id"`
	Email      string  `json:"email"`
	FullName   *string `json:"full_name,omitempty"`
	Title      *string `json:"title,omitempty"`
	Role       string  `json:"role"`
	ManagerID  *int64  `json:"manager_id,omitempty"`
}

func (h *Handler) userMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

// PasswordUpdateRequest is the body for a self password change.
type PasswordUpdateRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) changeOwnPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req PasswordUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.NewPassword) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "new_password is required")
		return
	}

	if err := h.users.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrWrongPassword) {
			writeError(w, http.StatusBadRequest, "validation_failed", "incorrect current password")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// currentUser resolves the authenticated account from the request claims.
// It writes the error response itself when resolution fails.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	user, err := h.users.UserByEmail(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "could not validate credentials")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return nil, false
	}
	return user, true
}

func toUserView(u *domain.User) UserView {
	return UserView{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		Email:      u.Email,
		FullName:   u.FullName,
		Title:      u.Title,
		Role:       u.Role,
		ManagerID:  u.ManagerID,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
