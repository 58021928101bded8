package common

import (
	"errors"
	"net/http"

	userdomain "colors-app-go/internal/domain/user"
	"colors-app-go/internal/transport/httpserver/middleware"
)

type authMeResponse struct {
	ID      string           `json:"id"`
	Phone   string           `json:"phone"`
	Profile *profileResponse `json:"profile,omitempty"`
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	response := authMeResponse{ID: user.ID, Phone: user.Phone}
	profile, err := h.Profiles.GetProfile(r.Context(), user.ID)
	switch {
	case err == nil:
		converted := h.toProfileResponse(r, profile)
		response.Profile = &converted
	case errors.Is(err, userdomain.ErrProfileNotFound):
	default:
		h.log.InternalError("auth.me: get profile failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, response)
}
