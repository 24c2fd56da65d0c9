package handler

import (
	"github.com/futureme/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	coach    *service.CoachService
	messages *service.MessageService
	voice    *service.VoiceService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(coach *service.CoachService, messages *service.MessageService, voice *service.VoiceService) *API {
	return &API{
		coach:    coach,
		messages: messages,
		voice:    voice,
	}
}
