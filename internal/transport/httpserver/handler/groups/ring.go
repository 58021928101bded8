package groups

import (
	"net/http"

	"colors-app-go/internal/domain/ring"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/middleware"
)

const maxRingSize = 2048

func (h *Handlers) GetRing(w http.ResponseWriter, r *http.Request) {
	result, ok := h.buildRing(w, r, "ring.get")
	if !ok {
		return
	}
	common.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetRingSVG(w http.ResponseWriter, r *http.Request) {
	result, ok := h.buildRing(w, r, "ring.svg")
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ring.RenderSVG(result)))
}

func (h *Handlers) buildRing(w http.ResponseWriter, r *http.Request, op string) (ring.Ring, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return ring.Ring{}, false
	}
	groupID, ok := h.groupParam(w, r, op)
	if !ok {
		return ring.Ring{}, false
	}

	size, err := common.ParseFloatParam(r.URL.Query().Get("size"), ring.DefaultSize, maxRingSize)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "size must be a number between 1 and 2048")
		return ring.Ring{}, false
	}

	members, err := h.Groups.ListMembers(r.Context(), user.ID, groupID)
	if err != nil {
		h.writeDomainError(w, op, err, "user_id", user.ID, "group_id", groupID)
		return ring.Ring{}, false
	}
	latest, err := h.Moods.LatestByMember(r.Context(), user.ID, groupID)
	if err != nil {
		h.writeDomainError(w, op, err, "user_id", user.ID, "group_id", groupID)
		return ring.Ring{}, false
	}
	today, err := h.Moods.Today(r.Context(), user.ID)
	if err != nil {
		h.writeDomainError(w, op, err, "user_id", user.ID)
		return ring.Ring{}, false
	}

	entries := make([]ring.Entry, 0, len(members))
	for _, member := range members {
		entry := ring.Entry{UserID: member.UserID, DisplayName: member.DisplayName}
		if mood, ok := latest[member.UserID]; ok {
			entry.HasFeeling = true
			entry.Color = string(mood.Color)
			entry.Hex = mood.Color.Hex()
			entry.Word = mood.Word
			entry.Day = mood.Day
		}
		entries = append(entries, entry)
	}

	return ring.Build(entries, today, ring.Options{Size: size}), true
}
