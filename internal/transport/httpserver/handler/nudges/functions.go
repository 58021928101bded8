package nudges

import (
	"net/http"

	"colors-app-go/internal/transport/httpserver/handler/common"
)

// AssignNudges and SendNudges are called by an external scheduler with the
// functions key instead of a user token.
func (h *Handlers) AssignNudges(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Nudges.AssignDaily(r.Context())
	if err != nil {
		h.log.InternalError("functions.assign_nudges: failed", err)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	h.log.Info("functions.assign_nudges: done", "considered", summary.Considered, "assigned", summary.Assigned, "skipped", summary.Skipped, "failed", summary.Failed)
	common.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handlers) SendNudges(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Nudges.DispatchDue(r.Context())
	if err != nil {
		h.log.InternalError("functions.send_nudges: failed", err)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	h.log.Info("functions.send_nudges: done", "considered", summary.Considered, "sent", summary.Sent, "skipped", summary.Skipped, "failed", summary.Failed)
	common.WriteJSON(w, http.StatusOK, summary)
}
