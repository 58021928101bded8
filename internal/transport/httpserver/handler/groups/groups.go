package groups

import (
	"net/http"
	"time"

	groupdomain "colors-app-go/internal/domain/group"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/middleware"
)

type createGroupRequest struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

type updateGroupRequest struct {
	Name  *string `json:"name"`
	Emoji *string `json:"emoji"`
}

type groupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type memberResponse struct {
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	DisplayName string    `json:"display_name"`
	Phone       *string   `json:"phone"`
	AvatarKey   *string   `json:"avatar_key"`
}

func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	groups, err := h.Groups.ListGroups(r.Context(), user.ID)
	if err != nil {
		h.writeDomainError(w, "groups.list", err, "user_id", user.ID)
		return
	}

	response := make([]groupResponse, 0, len(groups))
	for i := range groups {
		response = append(response, toGroupResponse(&groups[i]))
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.CreateGroup(r.Context(), user.ID, req.Name, req.Emoji)
	if err != nil {
		h.writeDomainError(w, "groups.create", err, "user_id", user.ID)
		return
	}

	common.WriteJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "groups.get")
	if !ok {
		return
	}

	group, err := h.Groups.GetGroup(r.Context(), user.ID, groupID)
	if err != nil {
		h.writeDomainError(w, "groups.get", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

func (h *Handlers) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "groups.update")
	if !ok {
		return
	}

	group, err := h.Groups.UpdateGroup(r.Context(), user.ID, groupID, groupdomain.GroupUpdate{Name: req.Name, Emoji: req.Emoji})
	if err != nil {
		h.writeDomainError(w, "groups.update", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toGroupResponse(group))
}

func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "groups.delete")
	if !ok {
		return
	}

	if err := h.Groups.DeleteGroup(r.Context(), user.ID, groupID); err != nil {
		h.writeDomainError(w, "groups.delete", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "groups.leave")
	if !ok {
		return
	}

	if err := h.Groups.LeaveGroup(r.Context(), user.ID, groupID); err != nil {
		h.writeDomainError(w, "groups.leave", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "groups.list_members")
	if !ok {
		return
	}

	members, err := h.Groups.ListMembers(r.Context(), user.ID, groupID)
	if err != nil {
		h.writeDomainError(w, "groups.list_members", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	response := make([]memberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, memberResponse{
			UserID:      member.UserID,
			Role:        member.Role,
			JoinedAt:    member.JoinedAt,
			DisplayName: member.DisplayName,
			Phone:       member.Phone,
			AvatarKey:   member.AvatarKey,
		})
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := h.groupParam(w, r, "groups.remove_member")
	if !ok {
		return
	}
	memberID, ok := common.PathUUID(r, "user_id")
	if !ok {
		h.writeDomainError(w, "groups.remove_member", groupdomain.ErrMemberNotFound, "actor_id", user.ID, "group_id", groupID)
		return
	}

	if err := h.Groups.RemoveMember(r.Context(), user.ID, groupID, memberID); err != nil {
		h.writeDomainError(w, "groups.remove_member", err, "actor_id", user.ID, "group_id", groupID, "member_id", memberID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toGroupResponse(group *groupdomain.Group) groupResponse {
	return groupResponse{
		ID:        group.ID,
		Name:      group.Name,
		Emoji:     group.Emoji,
		OwnerID:   group.OwnerID,
		CreatedAt: group.CreatedAt,
		UpdatedAt: group.UpdatedAt,
	}
}
