package handler

import (
	"net/http"

	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/payload"
	"github.com/vasapolrittideah/identity-docstore/services/admin-service/internal/usecase"
)

func (h *adminHTTPHandler) createToken(w http.ResponseWriter, r *http.Request) {
	var req payload.TokenRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, err, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, payload.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
	})
}
