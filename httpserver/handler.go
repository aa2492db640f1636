package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/x402labs/attestation-ledger/api"
	"github.com/x402labs/attestation-ledger/interfaces"
	"github.com/x402labs/attestation-ledger/ledger"
	"github.com/x402labs/attestation-ledger/metrics"
)

// maxBodySize is the maximum allowed request body size (64KB). Attestation
// requests are a few hundred bytes; anything larger is abuse.
const maxBodySize = 64 * 1024

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

// Handler processes HTTP requests for the attestation ledger.
type Handler struct {
	store *ledger.Store
	log   *slog.Logger
}

// NewHandler creates a new HTTP request handler over the given store.
func NewHandler(store *ledger.Store, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log,
	}
}

// HandleAttest processes write requests.
//
// URL format: POST /api/attest
// Request body: JSON api.AttestRequest with hex-encoded byte fields.
//
// Status codes:
//   - 200: record created, body is the stored record
//   - 400: malformed input (wrong field width, bad encoding)
//   - 403: signature invalid or signer not allowed
//   - 409: a record already exists for this claim ID
func (h *Handler) HandleAttest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	record, err := h.handleAttest(r)
	if err != nil {
		h.log.Info("Attest request rejected", "err", err, slog.Int("status", err.StatusCode))
		metrics.IncAttestFailure(failureReason(err))
		writeError(w, err)
		return
	}

	metrics.IncAttestOK()
	metrics.ObserveAttestDuration(time.Since(start))
	writeJSON(w, http.StatusOK, api.NewAttestationResponse(record))
}

func (h *Handler) handleAttest(r *http.Request) (*ledger.AttestationRecord, *RequestError) {
	var wireReq api.AttestRequest
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := decoder.Decode(&wireReq); err != nil {
		return nil, &RequestError{
			StatusCode: http.StatusBadRequest,
			Err:        fmt.Errorf("%w: invalid request body: %v", interfaces.ErrMalformedInput, err),
		}
	}

	req, err := wireReq.ToLedgerRequest()
	if err != nil {
		return nil, &RequestError{StatusCode: http.StatusBadRequest, Err: err}
	}

	record, err := h.store.Attest(r.Context(), req)
	if err != nil {
		return nil, &RequestError{StatusCode: statusForError(err), Err: err}
	}
	return record, nil
}

// HandleQuery processes read requests. No authorization is required.
//
// URL format: GET /api/public/attestation/{claim_id}
// The claim ID is 64 hex characters, with or without 0x prefix.
//
// Status codes:
//   - 200: body is the stored record
//   - 400: claim ID is not valid hex of the right length
//   - 404: no record exists for this claim ID
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	claimID, err := interfaces.NewClaimIDFromHex(chi.URLParam(r, "claim_id"))
	if err != nil {
		writeError(w, &RequestError{
			StatusCode: http.StatusBadRequest,
			Err:        fmt.Errorf("%w: %v", interfaces.ErrMalformedInput, err),
		})
		return
	}

	record, err := h.store.Query(r.Context(), claimID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			metrics.IncQueryMiss()
			writeError(w, &RequestError{StatusCode: http.StatusNotFound, Err: interfaces.ErrNotFound})
			return
		}
		h.log.Error("Query failed", slog.String("claim_id", claimID.String()), "err", err)
		writeError(w, &RequestError{StatusCode: http.StatusInternalServerError, Err: err})
		return
	}

	metrics.IncQueryHit()
	writeJSON(w, http.StatusOK, api.NewAttestationResponse(record))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, interfaces.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrMalformedInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func failureReason(err *RequestError) string {
	switch {
	case errors.Is(err.Err, interfaces.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err.Err, interfaces.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err.Err, interfaces.ErrMalformedInput):
		return "malformed"
	default:
		return "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, reqErr *RequestError) {
	writeJSON(w, reqErr.StatusCode, api.ErrorResponse{Error: reqErr.Error()})
}
