package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rzbill/vesta/internal/runtime"
)

// GeneralController serves endpoints that are not tied to a stream or an
// account.
type GeneralController struct {
	rt *runtime.Runtime
}

func NewGeneralController(rt *runtime.Runtime) *GeneralController {
	return &GeneralController{rt: rt}
}

func (c *GeneralController) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", c.handleHealth)
}

// handleHealth returns 200 with storage counters when the store answers,
// 503 otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "not_serving")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": c.rt.StorageStats(),
	})
}
