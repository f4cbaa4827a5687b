package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/mint"
	streamsvc "github.com/rzbill/vesta/internal/services/streams"
	"github.com/rzbill/vesta/internal/vesting"
)

// SignerHeader names the request header carrying the authenticated caller.
const SignerHeader = "X-Vesta-Signer"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errNoSigner = errors.New("missing " + SignerHeader + " header")

// writeError writes {"error": code, "message": message} with status.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

// writeJSON writes data as a JSON response with status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps err onto a status code and its stable tag.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeError(w, status, code, msg)
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errNoSigner):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, streamsvc.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ledger.ErrUnknownMint):
		return http.StatusNotFound, "unknown_mint"
	case errors.Is(err, mint.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ledger.ErrEscrowOwnership):
		return http.StatusForbidden, "escrow_ownership"
	}
	code := vesting.Code(err)
	switch code {
	case "invalid_schedule", "invalid_recipient", "invalid_argument":
		return http.StatusBadRequest, code
	case "unauthorized":
		return http.StatusForbidden, code
	case "stream_closed":
		return http.StatusConflict, code
	case "insufficient_funds", "nothing_to_withdraw":
		return http.StatusUnprocessableEntity, code
	default:
		return http.StatusInternalServerError, code
	}
}

// signer returns the caller named by SignerHeader.
func signer(r *http.Request) (vesting.Address, error) {
	v := r.Header.Get(SignerHeader)
	if v == "" {
		return "", errNoSigner
	}
	a := vesting.Address(v)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

// decodeBody decodes a JSON body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// parseLimit parses a limit query value. Empty means 0, the service default.
func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit %q", vesting.ErrInvalidArgument, s)
	}
	return n, nil
}

// parseUint parses an unsigned query value. Empty means 0.
func parseUint(name, s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", vesting.ErrInvalidArgument, name, s)
	}
	return n, nil
}

func parseBool(s string) bool {
	return s == "true" || s == "1"
}
