package feelings

import (
	"net/http"
	"strings"
	"time"

	feelingdomain "colors-app-go/internal/domain/feeling"
	groupdomain "colors-app-go/internal/domain/group"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/middleware"
)

type logFeelingRequest struct {
	Color  string `json:"color"`
	Word   string `json:"word"`
	Reason string `json:"reason"`
}

type logToGroupsRequest struct {
	GroupIDs []string `json:"group_ids"`
	Color    string   `json:"color"`
	Word     string   `json:"word"`
	Reason   string   `json:"reason"`
}

type updateFeelingRequest struct {
	Color  *string `json:"color"`
	Word   *string `json:"word"`
	Reason *string `json:"reason"`
}

type feelingResponse struct {
	ID            string    `json:"id"`
	GroupID       string    `json:"group_id"`
	UserID        string    `json:"user_id"`
	Day           string    `json:"day"`
	Color         string    `json:"color"`
	Hex           string    `json:"hex"`
	Word          string    `json:"word"`
	Reason        *string   `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	EditableUntil time.Time `json:"editable_until"`
}

type groupResultResponse struct {
	GroupID string           `json:"group_id"`
	Feeling *feelingResponse `json:"feeling,omitempty"`
	Error   *resultError     `json:"error,omitempty"`
}

type resultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type colorResponse struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

func (h *Handlers) ListColors(w http.ResponseWriter, r *http.Request) {
	colors := feelingdomain.Colors()
	response := make([]colorResponse, 0, len(colors))
	for _, color := range colors {
		response = append(response, colorResponse{Name: string(color), Hex: color.Hex()})
	}
	common.WriteJSON(w, http.StatusOK, response)
}

func (h *Handlers) LogFeeling(w http.ResponseWriter, r *http.Request) {
	var req logFeelingRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := common.PathUUID(r, "id")
	if !ok {
		h.writeDomainError(w, "feelings.create", groupdomain.ErrGroupNotFound, "user_id", user.ID)
		return
	}

	feeling, err := h.Feelings.Log(r.Context(), feelingdomain.LogInput{
		UserID:  user.ID,
		GroupID: groupID,
		Color:   req.Color,
		Word:    req.Word,
		Reason:  req.Reason,
	})
	if err != nil {
		h.writeDomainError(w, "feelings.create", err, "user_id", user.ID, "group_id", groupID)
		return
	}
	h.countLogged(feeling)

	common.WriteJSON(w, http.StatusCreated, toFeelingResponse(feeling))
}

func (h *Handlers) LogToGroups(w http.ResponseWriter, r *http.Request) {
	var req logToGroupsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	groupIDs := make([]string, 0, len(req.GroupIDs))
	for _, raw := range req.GroupIDs {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		groupID, ok := common.ParseUUID(raw)
		if !ok {
			common.WriteError(w, http.StatusBadRequest, "invalid_request", "group_ids must contain group uuids")
			return
		}
		groupIDs = append(groupIDs, groupID)
	}

	results, err := h.Feelings.LogToGroups(r.Context(), user.ID, groupIDs, req.Color, req.Word, req.Reason)
	if err != nil {
		h.writeDomainError(w, "feelings.create_many", err, "user_id", user.ID)
		return
	}

	status := http.StatusCreated
	created := 0
	response := make([]groupResultResponse, 0, len(results))
	for _, result := range results {
		item := groupResultResponse{GroupID: result.GroupID}
		if result.Err != nil {
			mapping, known := errorFor(result.Err)
			if !known {
				h.log.InternalError("feelings.create_many: group failed", result.Err, "user_id", user.ID, "group_id", result.GroupID)
				mapping = errorMapping{code: "internal_error", message: "internal error"}
			}
			item.Error = &resultError{Code: mapping.code, Message: mapping.message}
		} else {
			converted := toFeelingResponse(result.Feeling)
			item.Feeling = &converted
			h.countLogged(result.Feeling)
			created++
		}
		response = append(response, item)
	}
	if created < len(results) {
		status = http.StatusMultiStatus
	}

	common.WriteJSON(w, status, response)
}

func (h *Handlers) UpdateFeeling(w http.ResponseWriter, r *http.Request) {
	var req updateFeelingRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	feelingID, ok := common.PathUUID(r, "feeling_id")
	if !ok {
		h.writeDomainError(w, "feelings.update", feelingdomain.ErrFeelingNotFound, "user_id", user.ID)
		return
	}

	feeling, err := h.Feelings.Update(r.Context(), feelingdomain.UpdateInput{
		UserID:    user.ID,
		FeelingID: feelingID,
		Color:     req.Color,
		Word:      req.Word,
		Reason:    req.Reason,
	})
	if err != nil {
		h.writeDomainError(w, "feelings.update", err, "user_id", user.ID, "feeling_id", feelingID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toFeelingResponse(feeling))
}

func (h *Handlers) ListToday(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := common.PathUUID(r, "id")
	if !ok {
		h.writeDomainError(w, "feelings.today", groupdomain.ErrGroupNotFound, "user_id", user.ID)
		return
	}

	feelings, err := h.Feelings.ListToday(r.Context(), user.ID, groupID)
	if err != nil {
		h.writeDomainError(w, "feelings.today", err, "user_id", user.ID, "group_id", groupID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toFeelingResponses(feelings))
}

func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}
	groupID, ok := common.PathUUID(r, "id")
	if !ok {
		h.writeDomainError(w, "feelings.history", groupdomain.ErrGroupNotFound, "user_id", user.ID)
		return
	}
	memberID, ok := common.PathUUID(r, "user_id")
	if !ok {
		h.writeDomainError(w, "feelings.history", groupdomain.ErrMemberNotFound, "user_id", user.ID, "group_id", groupID)
		return
	}

	limit, err := common.ParseIntParam(r.URL.Query().Get("limit"), 0)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
		return
	}

	feelings, err := h.Feelings.History(r.Context(), user.ID, groupID, memberID, limit)
	if err != nil {
		h.writeDomainError(w, "feelings.history", err, "user_id", user.ID, "group_id", groupID, "member_id", memberID)
		return
	}

	common.WriteJSON(w, http.StatusOK, toFeelingResponses(feelings))
}

func (h *Handlers) countLogged(feeling *feelingdomain.Feeling) {
	if h.counter != nil && feeling != nil {
		h.counter.FeelingLogged(string(feeling.Color))
	}
}

func toFeelingResponses(feelings []feelingdomain.Feeling) []feelingResponse {
	response := make([]feelingResponse, 0, len(feelings))
	for i := range feelings {
		response = append(response, toFeelingResponse(&feelings[i]))
	}
	return response
}

func toFeelingResponse(feeling *feelingdomain.Feeling) feelingResponse {
	return feelingResponse{
		ID:            feeling.ID,
		GroupID:       feeling.GroupID,
		UserID:        feeling.UserID,
		Day:           feeling.Day.Format("2006-01-02"),
		Color:         string(feeling.Color),
		Hex:           feeling.Color.Hex(),
		Word:          feeling.Word,
		Reason:        feeling.Reason,
		CreatedAt:     feeling.CreatedAt,
		UpdatedAt:     feeling.UpdatedAt,
		EditableUntil: feeling.EditableUntil(),
	}
}
