package groups

import (
	"errors"
	"net/http"

	groupdomain "colors-app-go/internal/domain/group"
	"colors-app-go/internal/domain/support"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"github.com/go-chi/chi/v5"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var domainErrors = []errorMapping{
	{groupdomain.ErrGroupNotFound, http.StatusNotFound, "group_not_found", "group not found"},
	{groupdomain.ErrMemberNotFound, http.StatusNotFound, "member_not_found", "member not found"},
	{groupdomain.ErrNotOwner, http.StatusForbidden, "not_owner", "only the owner can do this"},
	{groupdomain.ErrCannotRemoveOwner, http.StatusConflict, "cannot_remove_owner", "cannot remove owner"},
	{groupdomain.ErrGroupFull, http.StatusConflict, "group_full", "group already has 6 members"},
	{groupdomain.ErrAlreadyMember, http.StatusConflict, "already_member", "already a member"},
	{groupdomain.ErrInviteNotFound, http.StatusNotFound, "invite_not_found", "invite not found"},
	{groupdomain.ErrInviteUsed, http.StatusGone, "invite_used", "invite already used"},
	{groupdomain.ErrInviteExpired, http.StatusGone, "invite_expired", "invite expired"},
	{support.ErrSelfSupport, http.StatusBadRequest, "invalid_request", "cannot send support to yourself"},
	{support.ErrRecipientNotFound, http.StatusNotFound, "member_not_found", "member not found"},
	{support.ErrRecipientNoPhone, http.StatusConflict, "recipient_no_phone", "recipient has no phone number"},
}

// writeDomainError maps expected failures to 4xx and logs them as business
// errors; anything else is a 500.
func (h *Handlers) writeDomainError(w http.ResponseWriter, op string, err error, args ...any) {
	var validation *groupdomain.ValidationError
	if errors.As(err, &validation) {
		common.WriteError(w, http.StatusBadRequest, "invalid_request", validation.Error())
		return
	}
	for _, mapping := range domainErrors {
		if errors.Is(err, mapping.err) {
			h.log.BusinessError(op+": "+mapping.message, err, args...)
			common.WriteError(w, mapping.status, mapping.code, mapping.message)
			return
		}
	}
	h.log.InternalError(op+": failed", err, args...)
	common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// groupParam reads the {id} route parameter. A value that is not a uuid gets
// the same 404 as a group the caller cannot see.
func (h *Handlers) groupParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	groupID, ok := common.PathUUID(r, "id")
	if !ok {
		h.writeDomainError(w, op, groupdomain.ErrGroupNotFound, "group_id", chi.URLParam(r, "id"))
	}
	return groupID, ok
}
