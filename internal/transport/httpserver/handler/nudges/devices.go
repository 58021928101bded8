package nudges

import (
	"net/http"
	"net/url"
	"time"

	nudgedomain "colors-app-go/internal/domain/nudge"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type registerDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
	Timezone string `json:"timezone"`
}

type deviceResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handlers) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	device, err := h.Nudges.RegisterDevice(r.Context(), user.ID, req.Token, req.Platform, req.Timezone)
	if err != nil {
		h.writeDomainError(w, "devices.register", err, "user_id", user.ID, "platform", req.Platform)
		return
	}

	common.WriteJSON(w, http.StatusCreated, toDeviceResponse(device))
}

func (h *Handlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	devices, err := h.Nudges.ListDevices(r.Context(), user.ID)
	if err != nil {
		h.writeDomainError(w, "devices.list", err, "user_id", user.ID)
		return
	}

	response := make([]deviceResponse, 0, len(devices))
	for i := range devices {
		response = append(response, toDeviceResponse(&devices[i]))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	// Expo tokens contain brackets, so clients may percent-encode the segment.
	token, err := url.PathUnescape(chi.URLParam(r, "token"))
	if err != nil || token == "" {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	if err := h.Nudges.UnregisterDevice(r.Context(), user.ID, token); err != nil {
		h.writeDomainError(w, "devices.unregister", err, "user_id", user.ID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toDeviceResponse(device *nudgedomain.Device) deviceResponse {
	return deviceResponse{
		ID:        device.ID,
		Token:     device.Token,
		Platform:  device.Platform,
		CreatedAt: device.CreatedAt,
		UpdatedAt: device.UpdatedAt,
	}
}
