package httpapi

import (
	"errors"
	"net/http"

	"github.com/staffdesk/staffdesk/internal/audit"
	"github.com/staffdesk/staffdesk/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginResponse uses pointer fields so the 401 body renders null values,
// never an empty token that could be mistaken for a credential.
type loginResponse struct {
	Token    *string  `json:"token"`
	Username *string  `json:"username"`
	Roles    []string `json:"roles"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// One opaque response for unknown email, disabled account and
			// wrong password alike.
			writeJSON(w, http.StatusUnauthorized, loginResponse{})
			return
		}
		a.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	audit.LogEvent(r.Context(), a.logger, "auth.login", "email", req.Email)
	writeJSON(w, http.StatusOK, loginResponse{
		Token:    &result.Token,
		Username: &result.Username,
		Roles:    result.Roles,
	})
}

type registerRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Department string `json:"department"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration payload")
		return
	}

	account, err := a.auth.Register(r.Context(), auth.Registration{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		a.logger.Error("register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	audit.LogEvent(r.Context(), a.logger, "auth.register", "email", account.Email)
	// The password hash is scrubbed by the model's json tag.
	writeJSON(w, http.StatusCreated, account)
}
