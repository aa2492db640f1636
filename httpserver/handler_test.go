package httpserver

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402labs/attestation-ledger/api"
	"github.com/x402labs/attestation-ledger/ledger"
	"github.com/x402labs/attestation-ledger/storage"
)

func newTestServer(t *testing.T) (*Server, *ledger.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := ledger.NewStore(storage.NewMemorySlotStore(), nil, ledger.NewAllowlistAuthorizer(), logger)

	srv, err := New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      logger,
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, NewHandler(store, logger))
	require.NoError(t, err)
	return srv, store
}

func signedWireRequest(t *testing.T, claimByte byte, publicInputs [4]uint64) *api.AttestRequest {
	t.Helper()

	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 1
	privKey := ed25519.NewKeyFromSeed(seed)

	req := &api.AttestRequest{
		ClaimID:      bytes.Repeat([]byte{claimByte}, 32),
		ProofHash:    bytes.Repeat([]byte{0xAA}, 32),
		PublicInputs: publicInputs,
		RefundTxSig:  bytes.Repeat([]byte{0xBB}, 64),
		Attester:     hexutil.Bytes(privKey.Public().(ed25519.PublicKey)),
		// The digest binds only the record fields, so a placeholder signature
		// is enough to pass width validation before signing.
		Signature: make(hexutil.Bytes, ed25519.SignatureSize),
	}

	typed, err := req.ToLedgerRequest()
	require.NoError(t, err)
	digest := ledger.AttestDigest(typed.ClaimID, typed.ProofHash, typed.PublicInputs, typed.RefundTxSig)
	req.Signature = ed25519.Sign(privKey, digest[:])
	return req
}

func doAttest(t *testing.T, router http.Handler, req *api.AttestRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/attest", bytes.NewReader(body)))
	return w
}

func doQuery(t *testing.T, router http.Handler, claimIDHex string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/public/attestation/"+claimIDHex, nil))
	return w
}

func TestHandleAttestAndQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.getRouter()

	req := signedWireRequest(t, 0x01, [4]uint64{1, 500, 128, 1000000})
	w := doAttest(t, router, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created api.AttestationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, req.ClaimID, created.ClaimID)
	assert.Equal(t, req.ProofHash, created.ProofHash)
	assert.Equal(t, req.PublicInputs, created.PublicInputs)
	assert.NotZero(t, created.AttestedAt)
	assert.Len(t, created.SlotAddress, 32)

	// Anyone can read the record back without credentials.
	w = doQuery(t, router, created.ClaimID.String())
	require.Equal(t, http.StatusOK, w.Code)

	var fetched api.AttestationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
}

func TestHandleAttestConflict(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.getRouter()

	first := signedWireRequest(t, 0x01, [4]uint64{1, 500, 128, 1000000})
	require.Equal(t, http.StatusOK, doAttest(t, router, first).Code)

	// A second attestation for the same claim is rejected even with a
	// different payload.
	second := signedWireRequest(t, 0x01, [4]uint64{0, 200, 64, 0})
	w := doAttest(t, router, second)
	assert.Equal(t, http.StatusConflict, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Contains(t, errResp.Error, "already exists")

	// The first record is still the one served.
	w = doQuery(t, router, first.ClaimID.String())
	require.Equal(t, http.StatusOK, w.Code)
	var fetched api.AttestationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, uint64(1000000), fetched.PublicInputs[3])
}

func TestHandleAttestMalformed(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.getRouter()

	t.Run("invalid json", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/attest", bytes.NewReader([]byte("{not json"))))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong claim id width", func(t *testing.T) {
		req := signedWireRequest(t, 0x01, [4]uint64{1, 500, 128, 1000000})
		req.ClaimID = req.ClaimID[:31]
		assert.Equal(t, http.StatusBadRequest, doAttest(t, router, req).Code)
	})

	t.Run("wrong signature width", func(t *testing.T) {
		req := signedWireRequest(t, 0x01, [4]uint64{1, 500, 128, 1000000})
		req.Signature = req.Signature[:63]
		assert.Equal(t, http.StatusBadRequest, doAttest(t, router, req).Code)
	})
}

func TestHandleAttestUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.getRouter()

	req := signedWireRequest(t, 0x01, [4]uint64{1, 500, 128, 1000000})
	req.Signature[0] ^= 0xFF
	w := doAttest(t, router, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The rejected write left no record behind.
	assert.Equal(t, http.StatusNotFound, doQuery(t, router, req.ClaimID.String()).Code)
}

func TestHandleQueryErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.getRouter()

	t.Run("unknown claim", func(t *testing.T) {
		w := doQuery(t, router, "0x"+strings.Repeat("ff", 32))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("claim id not hex", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, doQuery(t, router, "not-hex").Code)
	})

	t.Run("claim id wrong length", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, doQuery(t, router, "0xabcd").Code)
	})
}

func TestHealthAndDrainEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.getRouter()

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, get("/livez").Code)
	assert.Equal(t, http.StatusOK, get("/readyz").Code)

	assert.Equal(t, http.StatusOK, get("/drain").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get("/readyz").Code)

	assert.Equal(t, http.StatusOK, get("/undrain").Code)
	assert.Equal(t, http.StatusOK, get("/readyz").Code)
}
