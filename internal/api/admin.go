package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
)

// CreateUserRequest is the admin payload for provisioning an account.
type CreateUserRequest struct {
	Email     string  `json:"email"`
	FullName  *string `json:"full_name,omitempty"`
	Title     *string `json:"title,omitempty"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	ManagerID *int64  `json:"manager_id,omitempty"`
}

// Validate ensures request correctness.
func (r CreateUserRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(r.Password) == "" {
		return errors.New("password is required")
	}
	if !validRole(r.Role) {
		return errors.New("role must be one of employee, manager, hr, ceo")
	}
	return nil
}

// OptionalInt64 distinguishes an absent JSON field from an explicit null.
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

// MarshalJSON emits the wrapped value, or null when none is held.
func (o OptionalInt64) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// UnmarshalJSON records that the field was present; null leaves Value nil.
func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UserUpdateRequest carries a partial account update. Sending
// "manager_id": null detaches the user from their manager.
type UserUpdateRequest struct {
	Role      *string       `json:"role,omitempty"`
	ManagerID OptionalInt64 `json:"manager_id"`
	Title     *string       `json:"title,omitempty"`
}

// PasswordResetRequest is the admin payload for resetting any password.
type PasswordResetRequest struct {
	NewPassword string `json:"new_password"`
}

// TeamMemberView is one roster entry in a team listing.
type TeamMemberView struct {
	Name  *string `json:"name,omitempty"`
	Email string  `json:"email"`
}

// TeamDetailView describes one manager's team.
type TeamDetailView struct {
	ManagerID   int64            `json:"manager_id"`
	ManagerName *string          `json:"manager_name,omitempty"`
	MemberCount int              `json:"member_count"`
	Members     []TeamMemberView `json:"members"`
}

func validRole(role string) bool {
	switch role {
	case domain.RoleEmployee, domain.RoleManager, domain.RoleHR, domain.RoleCEO:
		return true
	}
	return false
}

// requireAdmin resolves the caller and enforces the hr/ceo requirement.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin() {
		writeError(w, http.StatusForbidden, "forbidden", "not enough permissions for this resource")
		return nil, false
	}
	return user, true
}

func (h *Handler) adminUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createUser(w, r)
	case http.MethodGet:
		h.listUsers(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.users.CreateUser(r.Context(), domain.CreateUserInput{
		Email:     req.Email,
		FullName:  req.FullName,
		Title:     req.Title,
		Password:  req.Password,
		Role:      req.Role,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "conflict", "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, toUserView(&users[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) adminUserByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/users/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	if idPart, found := strings.CutSuffix(rest, "/password"); found {
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
			return
		}
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.resetPassword(w, r, id)
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid user id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateUser(w, r, id)
	case http.MethodDelete:
		h.deleteUser(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, id int64) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Role != nil && !validRole(*req.Role) {
		writeError(w, http.StatusBadRequest, "validation_failed", "role must be one of employee, manager, hr, ceo")
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, domain.UserUpdate{
		Role:         req.Role,
		ManagerID:    req.ManagerID.Value,
		SetManagerID: req.ManagerID.Set,
		Title:        req.Title,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, id int64) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request, id int64) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.NewPassword) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "new_password is required")
		return
	}

	if err := h.users.ResetPassword(r.Context(), id, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	teams, err := h.users.Teams(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	views := make([]TeamDetailView, 0, len(teams))
	for _, team := range teams {
		members := make([]TeamMemberView, 0, len(team.Members))
		for _, m := range team.Members {
			members = append(members, TeamMemberView{Name: m.Name, Email: m.Email})
		}
		views = append(views, TeamDetailView{
			ManagerID:   team.ManagerID,
			ManagerName: team.ManagerName,
			MemberCount: team.MemberCount,
			Members:     members,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) adminInstaller(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	employeeID := strings.TrimPrefix(r.URL.Path, "/v1/admin/installers/")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing employee id")
		return
	}

	// Packaging a real installer is out of scope; this confirms the
	// request is authorized for the given employee.
	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "installer_generation_authorized",
		"for_employee": employeeID,
	})
}
