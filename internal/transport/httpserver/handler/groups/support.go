package groups

import (
	"net/http"

	"colors-app-go/internal/domain/support"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) ComposeSupport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "support.compose")
	if !ok {
		return
	}
	recipientID, ok := common.PathUUID(r, "user_id")
	if !ok {
		h.writeDomainError(w, "support.compose", support.ErrRecipientNotFound, "user_id", user.ID, "group_id", groupID)
		return
	}

	draft, err := h.Support.Compose(r.Context(), user.ID, groupID, recipientID)
	if err != nil {
		h.writeDomainError(w, "support.compose", err, "user_id", user.ID, "group_id", groupID, "recipient_id", recipientID)
		return
	}
	if h.counter != nil {
		h.counter.SupportDrafted()
	}

	common.WriteJSON(w, http.StatusOK, draft)
}

func (h *Handlers) ListSupportTemplates(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.Support.Catalog())
}
