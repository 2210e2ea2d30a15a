package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/staffdesk/staffdesk/internal/audit"
	"github.com/staffdesk/staffdesk/internal/auth"
	"github.com/staffdesk/staffdesk/internal/users"
)

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := a.users.List(r.Context())
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	if list == nil {
		list = []*users.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Department string `json:"department"`
	Enabled    *bool  `json:"enabled"`
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user payload")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "create user failed")
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	created, err := a.users.Create(r.Context(), &users.User{
		Name:         req.Name,
		Email:        auth.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Department:   req.Department,
		Enabled:      enabled,
	})
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type updateUserRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department"`
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user payload")
		return
	}

	updated, err := a.users.Update(r.Context(), id, users.Update{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
	})
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.users.Delete(r.Context(), id); err != nil {
		a.respondUserError(w, err)
		return
	}
	audit.LogEvent(r.Context(), a.logger, "users.delete", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}
	list, err := a.users.Search(r.Context(), name)
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	if list == nil {
		list = []*users.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleUsersByDepartment(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")
	list, err := a.users.ByDepartment(r.Context(), department)
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	if list == nil {
		list = []*users.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleDepartmentCount(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")
	count, err := a.users.CountByDepartment(r.Context(), department)
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

func (a *API) handleDepartmentEmails(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")
	emails, err := a.users.EmailsByDepartment(r.Context(), department)
	if err != nil {
		a.respondUserError(w, err)
		return
	}
	if emails == nil {
		emails = []string{}
	}
	writeJSON(w, http.StatusOK, emails)
}

func (a *API) respondUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, users.ErrDuplicate):
		writeError(w, http.StatusConflict, "email already exists")
	default:
		a.logger.Error("user operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "operation failed")
	}
}

// pathID parses a numeric path parameter, responding 400 on garbage input.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
