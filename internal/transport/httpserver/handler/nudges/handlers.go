package nudges

import (
	"context"
	"errors"
	"net/http"

	nudgedomain "colors-app-go/internal/domain/nudge"
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/pkg/logger"
)

type NudgeService interface {
	RegisterDevice(ctx context.Context, userID, token, platform, timezone string) (*nudgedomain.Device, error)
	UnregisterDevice(ctx context.Context, userID, token string) error
	ListDevices(ctx context.Context, userID string) ([]nudgedomain.Device, error)
	GetSettings(ctx context.Context, userID string) (*nudgedomain.Settings, error)
	UpdateSettings(ctx context.Context, userID string, update nudgedomain.SettingsUpdate) (*nudgedomain.Settings, error)
	AssignDaily(ctx context.Context) (nudgedomain.Summary, error)
	DispatchDue(ctx context.Context) (nudgedomain.Summary, error)
}

type Handlers struct {
	Nudges NudgeService
	log    logger.Logger
}

func New(nudges NudgeService, log logger.Logger) *Handlers {
	return &Handlers{
		Nudges: nudges,
		log:    log,
	}
}

func (h *Handlers) writeDomainError(w http.ResponseWriter, op string, err error, args ...any) {
	var validation *nudgedomain.ValidationError
	switch {
	case errors.As(err, &validation):
		common.WriteError(w, http.StatusBadRequest, "invalid_request", validation.Error())
	case errors.Is(err, nudgedomain.ErrDeviceNotFound):
		h.log.BusinessError(op+": device not found", err, args...)
		common.WriteError(w, http.StatusNotFound, "device_not_found", "device not found")
	case errors.Is(err, nudgedomain.ErrSettingsNotFound):
		h.log.BusinessError(op+": settings not found", err, args...)
		common.WriteError(w, http.StatusNotFound, "settings_not_found", "notification settings not found")
	default:
		h.log.InternalError(op+": failed", err, args...)
		common.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
