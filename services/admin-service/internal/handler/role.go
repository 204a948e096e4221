package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/payload"
)

func (h *adminHTTPHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleUsecase.ListRoles(r.Context())
	if err != nil {
		h.fail(w, err, "failed to list roles")
		return
	}

	writeJSON(w, http.StatusOK, payload.NewRoleResponses(roles))
}

func (h *adminHTTPHandler) createRole(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	role, err := h.roleUsecase.CreateRole(r.Context(), req.Name)
	if err != nil {
		h.fail(w, err, "failed to create role")
		return
	}

	writeJSON(w, http.StatusCreated, payload.NewRoleResponse(role))
}

func (h *adminHTTPHandler) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.roleUsecase.GetRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "failed to get role")
		return
	}

	writeJSON(w, http.StatusOK, payload.NewRoleResponse(role))
}

func (h *adminHTTPHandler) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.roleUsecase.DeleteRole(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "failed to delete role")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *adminHTTPHandler) listRoleClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.roleUsecase.ListRoleClaims(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "failed to list role claims")
		return
	}

	writeJSON(w, http.StatusOK, claims)
}

func (h *adminHTTPHandler) addRoleClaim(w http.ResponseWriter, r *http.Request) {
	var req payload.ClaimRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.roleUsecase.AddRoleClaim(r.Context(), chi.URLParam(r, "id"), req.Claim()); err != nil {
		h.fail(w, err, "failed to add role claim")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *adminHTTPHandler) removeRoleClaim(w http.ResponseWriter, r *http.Request) {
	var req payload.ClaimRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.roleUsecase.RemoveRoleClaim(r.Context(), chi.URLParam(r, "id"), req.Claim()); err != nil {
		h.fail(w, err, "failed to remove role claim")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
