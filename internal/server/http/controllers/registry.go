package controllers

import (
	"github.com/go-chi/chi/v5"
	"github.com/rzbill/vesta/internal/runtime"
	accountsvc "github.com/rzbill/vesta/internal/services/accounts"
	streamsvc "github.com/rzbill/vesta/internal/services/streams"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general  *GeneralController
	streams  *StreamsController
	accounts *AccountsController
}

// NewControllerRegistry creates the controllers over the given services.
func NewControllerRegistry(rt *runtime.Runtime, streams *streamsvc.Service, accounts *accountsvc.Service) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt),
		streams:  NewStreamsController(streams),
		accounts: NewAccountsController(accounts),
	}
}

// RegisterAllRoutes mounts every controller under /v1.
func (c *ControllerRegistry) RegisterAllRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		c.general.RegisterRoutes(r)
		c.streams.RegisterRoutes(r)
		c.accounts.RegisterRoutes(r)
	})
}
