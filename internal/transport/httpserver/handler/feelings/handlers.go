package feelings

import (
	"context"
	"errors"
	"net/http"

	feelingdomain "colors-app-go/internal/domain/feeling"
	groupdomain "colors-app-go/internal/domain/group"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/pkg/logger"
)

type FeelingService interface {
	Log(ctx context.Context, input feelingdomain.LogInput) (*feelingdomain.Feeling, error)
	LogToGroups(ctx context.Context, userID string, groupIDs []string, color, word, reason string) ([]feelingdomain.GroupResult, error)
	Update(ctx context.Context, input feelingdomain.UpdateInput) (*feelingdomain.Feeling, error)
	ListToday(ctx context.Context, userID, groupID string) ([]feelingdomain.Feeling, error)
	History(ctx context.Context, viewerID, groupID, memberID string, limit int) ([]feelingdomain.Feeling, error)
}

type Counter interface {
	FeelingLogged(color string)
}

type Handlers struct {
	Feelings FeelingService
	counter  Counter
	log      logger.Logger
}

func New(feelings FeelingService, counter Counter, log logger.Logger) *Handlers {
	return &Handlers{
		Feelings: feelings,
		counter:  counter,
		log:      log,
	}
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var domainErrors = []errorMapping{
	{groupdomain.ErrGroupNotFound, http.StatusNotFound, "group_not_found", "group not found"},
	{groupdomain.ErrMemberNotFound, http.StatusNotFound, "member_not_found", "member not found"},
	{feelingdomain.ErrFeelingNotFound, http.StatusNotFound, "feeling_not_found", "feeling not found"},
	{feelingdomain.ErrAlreadyLoggedToday, http.StatusConflict, "already_logged_today", "feeling already logged today"},
	{feelingdomain.ErrEditWindowClosed, http.StatusConflict, "edit_window_closed", "feelings can only be edited for 10 minutes"},
	{feelingdomain.ErrNotAuthor, http.StatusForbidden, "not_author", "only the author can edit a feeling"},
}

func errorFor(err error) (errorMapping, bool) {
	var validation *feelingdomain.ValidationError
	if errors.As(err, &validation) {
		return errorMapping{err: err, status: http.StatusBadRequest, code: "invalid_request", message: validation.Error()}, true
	}
	for _, mapping := range domainErrors {
		if errors.Is(err, mapping.err) {
			return mapping, true
		}
	}
	return errorMapping{}, false
}

func (h *Handlers) writeDomainError(w http.ResponseWriter, op string, err error, args ...any) {
	mapping, ok := errorFor(err)
	if !ok {
		h.log.InternalError(op+": failed", err, args...)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	if mapping.status != http.StatusBadRequest {
		h.log.BusinessError(op+": "+mapping.message, err, args...)
	}
	common.WriteError(w, mapping.status, mapping.code, mapping.message)
}
