package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/payload"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/usecase"
)

func (h *adminHTTPHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUsecase.ListUsers(r.Context())
	if err != nil {
		h.fail(w, err, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, payload.NewUserResponses(users))
}

func (h *adminHTTPHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userUsecase.CreateUser(r.Context(), usecase.CreateUserParams{
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		h.fail(w, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, payload.NewUserResponse(user))
}

func (h *adminHTTPHandler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUsecase.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, payload.NewUserResponse(user))
}

func (h *adminHTTPHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userUsecase.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *adminHTTPHandler) listUserRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.userUsecase.ListUserRoles(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "failed to list user roles")
		return
	}

	writeJSON(w, http.StatusOK, roles)
}

func (h *adminHTTPHandler) addUserRole(w http.ResponseWriter, r *http.Request) {
	var req payload.AddUserRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.userUsecase.AddUserToRole(r.Context(), chi.URLParam(r, "id"), req.Role); err != nil {
		h.fail(w, err, "failed to add user to role")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *adminHTTPHandler) removeUserRole(w http.ResponseWriter, r *http.Request) {
	err := h.userUsecase.RemoveUserFromRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "role"))
	if err != nil {
		h.fail(w, err, "failed to remove user from role")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *adminHTTPHandler) listUserClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.userUsecase.ListUserClaims(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "failed to list user claims")
		return
	}

	writeJSON(w, http.StatusOK, claims)
}

func (h *adminHTTPHandler) listUserLogins(w http.ResponseWriter, r *http.Request) {
	logins, err := h.userUsecase.ListUserLogins(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "failed to list user logins")
		return
	}

	writeJSON(w, http.StatusOK, logins)
}

func (h *adminHTTPHandler) generateRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.userUsecase.GenerateRecoveryCodes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "failed to generate recovery codes")
		return
	}

	writeJSON(w, http.StatusOK, payload.RecoveryCodesResponse{Codes: codes})
}

func (h *adminHTTPHandler) redeemRecoveryCode(w http.ResponseWriter, r *http.Request) {
	var req payload.RedeemCodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	redeemed, remaining, err := h.userUsecase.RedeemRecoveryCode(r.Context(), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		h.fail(w, err, "failed to redeem recovery code")
		return
	}

	writeJSON(w, http.StatusOK, payload.RedeemCodeResponse{Redeemed: redeemed, Remaining: remaining})
}

func (h *adminHTTPHandler) linkGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req payload.LinkGoogleLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	login, err := h.loginUsecase.LinkGoogleLogin(r.Context(), chi.URLParam(r, "id"), req.IDToken)
	if err != nil {
		h.fail(w, err, "failed to link google login")
		return
	}

	writeJSON(w, http.StatusOK, login)
}

func (h *adminHTTPHandler) removeUserLogin(w http.ResponseWriter, r *http.Request) {
	err := h.loginUsecase.RemoveLogin(
		r.Context(),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "provider"),
		chi.URLParam(r, "key"),
	)
	if err != nil {
		h.fail(w, err, "failed to remove user login")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
