package handler

import (
	"colors-app-go/internal/transport/httpserver/handler/common"
	"colors-app-go/internal/transport/httpserver/handler/feelings"
	"colors-app-go/internal/transport/httpserver/handler/groups"
	"colors-app-go/internal/transport/httpserver/handler/nudges"
)

type Handlers struct {
	Common   *common.Handlers
	Groups   *groups.Handlers
	Feelings *feelings.Handlers
	Nudges   *nudges.Handlers
}

func New(common *common.Handlers, groups *groups.Handlers, feelings *feelings.Handlers, nudges *nudges.Handlers) *Handlers {
	return &Handlers{
		Common:   common,
		Groups:   groups,
		Feelings: feelings,
		Nudges:   nudges,
	}
}
