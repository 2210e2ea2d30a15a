package httpapi

import (
	"errors"
	"net/http"

	"github.com/staffdesk/staffdesk/internal/audit"
	"github.com/staffdesk/staffdesk/internal/roles"
	"github.com/staffdesk/staffdesk/internal/users"
)

func (a *API) handleListRoles(w http.ResponseWriter, r *http.Request) {
	list, err := a.roles.All(r.Context())
	if err != nil {
		a.respondRoleError(w, err)
		return
	}
	if list == nil {
		list = []*roles.Role{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleGetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	role, err := a.roles.Get(r.Context(), id)
	if err != nil {
		a.respondRoleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (a *API) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "role name is required")
		return
	}

	created, err := a.roles.Create(r.Context(), &roles.Role{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		a.respondRoleError(w, err)
		return
	}
	audit.LogEvent(r.Context(), a.logger, "roles.create", "role", created.Name)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	list, err := a.roles.UserRoles(r.Context(), userID)
	if err != nil {
		a.respondRoleError(w, err)
		return
	}
	if list == nil {
		list = []*roles.Role{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	roleID, ok := pathID(w, r, "roleID")
	if !ok {
		return
	}

	// Resolve both sides first so missing entities surface as 404 rather
	// than a foreign-key failure.
	if _, err := a.users.Get(r.Context(), userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		a.respondRoleError(w, err)
		return
	}
	if _, err := a.roles.Get(r.Context(), roleID); err != nil {
		a.respondRoleError(w, err)
		return
	}

	assignment, err := a.roles.Assign(r.Context(), userID, roleID)
	if err != nil {
		a.respondRoleError(w, err)
		return
	}
	audit.LogEvent(r.Context(), a.logger, "roles.assign",
		"user_id", userID, "role_id", roleID)
	writeJSON(w, http.StatusCreated, assignment)
}

func (a *API) handleRemoveRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	roleID, ok := pathID(w, r, "roleID")
	if !ok {
		return
	}
	// Removing an absent assignment is a no-op success.
	if err := a.roles.Remove(r.Context(), userID, roleID); err != nil {
		a.respondRoleError(w, err)
		return
	}
	audit.LogEvent(r.Context(), a.logger, "roles.remove",
		"user_id", userID, "role_id", roleID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) respondRoleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roles.ErrNotFound):
		writeError(w, http.StatusNotFound, "role not found")
	case errors.Is(err, roles.ErrDuplicateRole):
		writeError(w, http.StatusBadRequest, "role already exists")
	case errors.Is(err, roles.ErrDuplicateAssignment):
		writeError(w, http.StatusBadRequest, "user already has this role")
	default:
		a.logger.Error("role operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "operation failed")
	}
}
