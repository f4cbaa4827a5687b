package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	cfgpkg "github.com/rzbill/vesta/internal/config"
	accountsvc "github.com/rzbill/vesta/internal/services/accounts"
	"github.com/rzbill/vesta/internal/vesting"
)

// AccountsController exposes asset registration, balances and partner fee
// overrides. These are administrative endpoints; the host in front of the
// server decides who may reach them.
type AccountsController struct {
	svc *accountsvc.Service
}

func NewAccountsController(svc *accountsvc.Service) *AccountsController {
	return &AccountsController{svc: svc}
}

func (c *AccountsController) RegisterRoutes(r chi.Router) {
	r.Get("/mints", c.handleListMints)
	r.Post("/mints", c.handleRegisterMint)
	r.Post("/accounts/fund", c.handleFund)
	r.Get("/accounts/{mint}/{owner}", c.handleBalance)
	r.Get("/partners/{partner}/fees", c.handleGetPartnerFees)
	r.Put("/partners/{partner}/fees", c.handleSetPartnerFees)
}

func (c *AccountsController) handleListMints(w http.ResponseWriter, r *http.Request) {
	list, err := c.svc.Mints(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mints": list})
}

func (c *AccountsController) handleRegisterMint(w http.ResponseWriter, r *http.Request) {
	var req registerMintReq
	if !decodeBody(w, r, &req) {
		return
	}
	meta, err := c.svc.RegisterMint(r.Context(), req.Mint, req.Decimals)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (c *AccountsController) handleFund(w http.ResponseWriter, r *http.Request) {
	var req fundReq
	if !decodeBody(w, r, &req) {
		return
	}
	acct, err := c.svc.Fund(r.Context(), req.Mint, req.Owner, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (c *AccountsController) handleBalance(w http.ResponseWriter, r *http.Request) {
	acct, err := c.svc.Balance(r.Context(),
		vesting.Address(chi.URLParam(r, "mint")),
		vesting.Address(chi.URLParam(r, "owner")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (c *AccountsController) handleGetPartnerFees(w http.ResponseWriter, r *http.Request) {
	partner := vesting.Address(chi.URLParam(r, "partner"))
	p, ok, err := c.svc.PartnerFees(r.Context(), partner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feesToJSON(partner, p, ok))
}

// handleSetPartnerFees installs an override. Omitted withdrawal percentages
// are zero.
func (c *AccountsController) handleSetPartnerFees(w http.ResponseWriter, r *http.Request) {
	var req partnerFeesJSON
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := feesFromJSON(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	partner := vesting.Address(chi.URLParam(r, "partner"))
	if err := c.svc.SetPartnerFees(r.Context(), partner, p); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feesToJSON(partner, p, true))
}

func feesFromJSON(j partnerFeesJSON) (vesting.FeePolicy, error) {
	var p vesting.FeePolicy
	for _, f := range []struct {
		in  string
		out *uint32
	}{
		{j.TreasuryPct, &p.TreasuryBps},
		{j.PartnerPct, &p.PartnerBps},
		{j.WithdrawTreasuryPct, &p.WithdrawTreasuryBps},
		{j.WithdrawPartnerPct, &p.WithdrawPartnerBps},
	} {
		bps, err := cfgpkg.ParsePercent(f.in)
		if err != nil {
			return vesting.FeePolicy{}, err
		}
		*f.out = bps
	}
	return p, nil
}

func feesToJSON(partner vesting.Address, p vesting.FeePolicy, override bool) partnerFeesJSON {
	return partnerFeesJSON{
		Partner:             partner,
		TreasuryPct:         cfgpkg.FormatPercent(p.TreasuryBps),
		PartnerPct:          cfgpkg.FormatPercent(p.PartnerBps),
		WithdrawTreasuryPct: cfgpkg.FormatPercent(p.WithdrawTreasuryBps),
		WithdrawPartnerPct:  cfgpkg.FormatPercent(p.WithdrawPartnerBps),
		Override:            override,
	}
}
