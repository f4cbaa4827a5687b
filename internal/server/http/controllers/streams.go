package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rzbill/vesta/internal/activity"
	streamsvc "github.com/rzbill/vesta/internal/services/streams"
	"github.com/rzbill/vesta/internal/vesting"
)

// StreamsController exposes the stream operations and queries.
//
// Mutating endpoints act on behalf of the caller named by SignerHeader;
// queries are unauthenticated.
type StreamsController struct {
	svc *streamsvc.Service
}

func NewStreamsController(svc *streamsvc.Service) *StreamsController {
	return &StreamsController{svc: svc}
}

// RegisterRoutes mounts the /streams routes.
func (c *StreamsController) RegisterRoutes(r chi.Router) {
	r.Route("/streams", func(r chi.Router) {
		r.Post("/", c.handleCreate)
		r.Get("/", c.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", c.handleGet)
			r.Get("/events", c.handleHistory)
			r.Post("/withdraw", c.handleWithdraw)
			r.Post("/cancel", c.handleCancel)
			r.Post("/transfer", c.handleTransfer)
			r.Post("/topup", c.handleTopup)
		})
	})
}

// handleCreate creates a stream funded by the caller. A replayed
// idempotency key answers 200 with the original stream instead of 201.
func (c *StreamsController) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, err := signer(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req streamsvc.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := c.svc.Create(r.Context(), caller, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// handleList lists streams matching an optional CEL filter.
func (c *StreamsController) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	list, err := c.svc.List(r.Context(), q.Get("filter"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"streams": list})
}

func (c *StreamsController) handleGet(w http.ResponseWriter, r *http.Request) {
	v, err := c.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleHistory pages through a stream's activity.
//
// Query parameters: start (sequence token), limit, reverse, and kinds as a
// comma separated list.
func (c *StreamsController) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseUint("start", q.Get("start"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	opts := activity.ReadOptions{Start: activity.Token(start), Limit: limit, Reverse: parseBool(q.Get("reverse"))}
	if k := q.Get("kinds"); k != "" {
		for _, s := range strings.Split(k, ",") {
			opts.Kinds = append(opts.Kinds, activity.Kind(strings.TrimSpace(s)))
		}
	}
	page, err := c.svc.History(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (c *StreamsController) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawReq
	c.mutate(w, r, &req, func(caller vesting.Address, id string) (streamsvc.Result, error) {
		return c.svc.Withdraw(r.Context(), caller, id, req.Amount)
	})
}

func (c *StreamsController) handleCancel(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, nil, func(caller vesting.Address, id string) (streamsvc.Result, error) {
		return c.svc.Cancel(r.Context(), caller, id)
	})
}

func (c *StreamsController) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferReq
	c.mutate(w, r, &req, func(caller vesting.Address, id string) (streamsvc.Result, error) {
		return c.svc.Transfer(r.Context(), caller, id, req.NewRecipient)
	})
}

func (c *StreamsController) handleTopup(w http.ResponseWriter, r *http.Request) {
	var req topupReq
	c.mutate(w, r, &req, func(caller vesting.Address, id string) (streamsvc.Result, error) {
		return c.svc.Topup(r.Context(), caller, id, req.Amount)
	})
}

// mutate authenticates the caller, decodes body when non-nil and runs op.
// Cancel takes no body, so an empty one is accepted there.
func (c *StreamsController) mutate(w http.ResponseWriter, r *http.Request, body any, op func(vesting.Address, string) (streamsvc.Result, error)) {
	caller, err := signer(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if body != nil && !decodeBody(w, r, body) {
		return
	}
	res, err := op(caller, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
