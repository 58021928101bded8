package groups

import (
	"net/http"
	"strings"
	"time"

	groupdomain "colors-app-go/internal/domain/group"
	userdomain "colors-app-go/internal/domain/user"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createInviteRequest struct {
	Phone *string `json:"phone"`
}

type acceptInviteRequest struct {
	Code string `json:"code"`
}

type inviteResponse struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	GroupID      string    `json:"group_id"`
	InviterID    string    `json:"inviter_id"`
	Phone        *string   `json:"phone"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	ShareMessage string    `json:"share_message,omitempty"`
}

type invitePreviewResponse struct {
	Code        string    `json:"code"`
	GroupID     string    `json:"group_id"`
	GroupName   string    `json:"group_name"`
	GroupEmoji  string    `json:"group_emoji"`
	InviterName string    `json:"inviter_name"`
	MemberCount int64     `json:"member_count"`
	MaxMembers  int       `json:"max_members"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *Handlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if r.ContentLength != 0 {
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
			return
		}
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "invites.create")
	if !ok {
		return
	}

	var phone *string
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		normalized, err := userdomain.NormalizePhone(*req.Phone)
		if err != nil {
			common.WriteError(w, http.StatusBadRequest, "invalid_request", "phone must be in international format")
			return
		}
		phone = &normalized
	}

	invite, err := h.Groups.CreateInvite(r.Context(), user.ID, groupID, phone)
	if err != nil {
		h.writeDomainError(w, "invites.create", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	response := toInviteResponse(invite)
	if group, err := h.Groups.GetGroup(r.Context(), user.ID, groupID); err == nil {
		response.ShareMessage = groupdomain.ShareMessage(group, invite)
	} else {
		h.log.InternalError("invites.create: load group for share message failed", err, "group_id", groupID)
	}
	common.WriteJSON(w, http.StatusCreated, response)
}

func (h *Handlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "invites.list")
	if !ok {
		return
	}

	invites, err := h.Groups.ListPendingInvites(r.Context(), user.ID, groupID)
	if err != nil {
		h.writeDomainError(w, "invites.list", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	response := make([]inviteResponse, 0, len(invites))
	for i := range invites {
		response = append(response, toInviteResponse(&invites[i]))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) PreviewInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	preview, err := h.Groups.PreviewInvite(r.Context(), code)
	if err != nil {
		h.writeDomainError(w, "invites.preview", err, "code", code)
		return
	}

	common.WriteJSON(w, http.StatusOK, invitePreviewResponse{
		Code:        preview.Invite.Code,
		GroupID:     preview.Invite.GroupID,
		GroupName:   preview.GroupName,
		GroupEmoji:  preview.GroupEmoji,
		InviterName: preview.InviterName,
		MemberCount: preview.MemberCount,
		MaxMembers:  groupdomain.MaxMembers,
		ExpiresAt:   preview.Invite.ExpiresAt,
	})
}

func (h *Handlers) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.AcceptInvite(r.Context(), user.ID, req.Code)
	if err != nil {
		h.writeDomainError(w, "invites.accept", err, "user_id", user.ID, "code", req.Code)
		return
	}

	common.WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

func toInviteResponse(invite *groupdomain.Invite) inviteResponse {
	return inviteResponse{
		ID:        invite.ID,
		Code:      invite.Code,
		GroupID:   invite.GroupID,
		InviterID: invite.InviterID,
		Phone:     invite.Phone,
		Status:    invite.Status,
		ExpiresAt: invite.ExpiresAt,
		CreatedAt: invite.CreatedAt,
	}
}
