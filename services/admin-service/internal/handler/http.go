package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/identity-docstore/identity/repository"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/payload"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/usecase"
	"github.com/vasapolrittideah/identity-docstore/shared/provider"
	"github.com/vasapolrittideah/identity-docstore/shared/validation"
)

// TokenPath is the only route the auth middleware must let through.
const TokenPath = "/token"

type adminHTTPHandler struct {
	logger       *zerolog.Logger
	validator    *validation.Validator
	authUsecase  usecase.AuthUsecase
	roleUsecase  usecase.RoleUsecase
	userUsecase  usecase.UserUsecase
	loginUsecase usecase.LoginUsecase
}

// NewAdminHTTPHandler builds the admin API router. authMiddleware runs on
// every route and is expected to exempt TokenPath.
func NewAdminHTTPHandler(
	logger *zerolog.Logger,
	validator *validation.Validator,
	authUsecase usecase.AuthUsecase,
	roleUsecase usecase.RoleUsecase,
	userUsecase usecase.UserUsecase,
	loginUsecase usecase.LoginUsecase,
	authMiddleware func(http.Handler) http.Handler,
) http.Handler {
	h := &adminHTTPHandler{
		logger:       logger,
		validator:    validator,
		authUsecase:  authUsecase,
		roleUsecase:  roleUsecase,
		userUsecase:  userUsecase,
		loginUsecase: loginUsecase,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(authMiddleware)

	r.Post(TokenPath, h.createToken)

	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.listRoles)
		r.Post("/", h.createRole)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getRole)
			r.Delete("/", h.deleteRole)
			r.Get("/claims", h.listRoleClaims)
			r.Post("/claims", h.addRoleClaim)
			r.Delete("/claims", h.removeRoleClaim)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getUser)
			r.Delete("/", h.deleteUser)
			r.Get("/roles", h.listUserRoles)
			r.Post("/roles", h.addUserRole)
			r.Delete("/roles/{role}", h.removeUserRole)
			r.Get("/claims", h.listUserClaims)
			r.Get("/logins", h.listUserLogins)
			r.Post("/logins/google", h.linkGoogleLogin)
			r.Delete("/logins/{provider}/{key}", h.removeUserLogin)
			r.Post("/recovery-codes", h.generateRecoveryCodes)
			r.Post("/recovery-codes/redeem", h.redeemRecoveryCode)
		})
	})

	return r
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and returns false when the request cannot be used.
func (h *adminHTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, payload.ErrorResponse{Error: "invalid request body"})
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, payload.ErrorResponse{Error: "validation failed", Fields: verr.Fields})
			return false
		}

		h.logger.Error().Err(err).Msg("failed to validate request")
		writeJSON(w, http.StatusInternalServerError, payload.ErrorResponse{Error: "something went wrong"})
		return false
	}

	return true
}

// fail maps usecase and store errors to HTTP responses. Unexpected errors are
// logged with msg and hidden from the client.
func (h *adminHTTPHandler) fail(w http.ResponseWriter, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrRoleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrRoleAlreadyExists),
		errors.Is(err, usecase.ErrUserAlreadyExists),
		errors.Is(err, usecase.ErrLoginAlreadyLinked):
		status = http.StatusConflict
	case errors.Is(err, provider.ErrInvalidGoogleToken),
		errors.Is(err, provider.ErrInvalidGoogleAudience),
		errors.Is(err, provider.ErrUnverifiedGoogleEmail):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrProviderNotConfigured):
		status = http.StatusNotImplemented
	case errors.Is(err, usecase.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, usecase.ErrNotAdministrator):
		status = http.StatusForbidden
	case errors.Is(err, usecase.ErrLockedOut):
		status = http.StatusLocked
	case errors.Is(err, repository.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrDisposed):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		h.logger.Error().Err(err).Msg(msg)
		writeJSON(w, status, payload.ErrorResponse{Error: "something went wrong"})
		return
	}

	writeJSON(w, status, payload.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
