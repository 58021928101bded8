package nudges

import (
	"net/http"
	"time"

	nudgedomain "colors-app-go/internal/domain/nudge"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/middleware"
)

type updateSettingsRequest struct {
	Enabled    *bool   `json:"enabled"`
	Timezone   *string `json:"timezone"`
	QuietStart *string `json:"quiet_start"`
	QuietEnd   *string `json:"quiet_end"`
}

type settingsResponse struct {
	Enabled     bool       `json:"enabled"`
	Timezone    string     `json:"timezone"`
	QuietStart  *string    `json:"quiet_start"`
	QuietEnd    *string    `json:"quiet_end"`
	NextNudgeAt *time.Time `json:"next_nudge_at"`
}

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	settings, err := h.Nudges.GetSettings(r.Context(), user.ID)
	if err != nil {
		h.writeDomainError(w, "notifications.settings.get", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toSettingsResponse(settings))
}

func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.Enabled == nil && req.Timezone == nil && req.QuietStart == nil && req.QuietEnd == nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "no fields to update")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	settings, err := h.Nudges.UpdateSettings(r.Context(), user.ID, nudgedomain.SettingsUpdate{
		Enabled:    req.Enabled,
		Timezone:   req.Timezone,
		QuietStart: req.QuietStart,
		QuietEnd:   req.QuietEnd,
	})
	if err != nil {
		h.writeDomainError(w, "notifications.settings.update", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toSettingsResponse(settings))
}

func toSettingsResponse(settings *nudgedomain.Settings) settingsResponse {
	return settingsResponse{
		Enabled:     settings.Enabled,
		Timezone:    settings.Timezone,
		QuietStart:  settings.QuietStart,
		QuietEnd:    settings.QuietEnd,
		NextNudgeAt: settings.NextNudgeAt,
	}
}
