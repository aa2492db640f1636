// Package clients provides HTTP clients for the attestation ledger API,
// used by the CLI and by collaborating backends.
package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/x402labs/attestation-ledger/api"
	"github.com/x402labs/attestation-ledger/interfaces"
)

// LedgerClient talks to an attestation ledger server over HTTP.
type LedgerClient struct {
	// ServerAddr is the base URL of the ledger server.
	ServerAddr string

	// HTTPClient may be overridden; http.DefaultClient is used when nil.
	HTTPClient *http.Client
}

func (c *LedgerClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Attest submits a signed attestation request and returns the stored record.
func (c *LedgerClient) Attest(request *api.AttestRequest) (*api.AttestationResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("could not encode attest request: %w", err)
	}

	url := fmt.Sprintf("%s/api/attest", c.ServerAddr)
	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("could not request attest endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var parsed api.AttestationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse attest response: %w", err)
	}
	return &parsed, nil
}

// Query fetches the attestation record for a claim ID. No authentication.
func (c *LedgerClient) Query(claimID interfaces.ClaimID) (*api.AttestationResponse, error) {
	url := fmt.Sprintf("%s/api/public/attestation/%s", c.ServerAddr, claimID)
	resp, err := c.httpClient().Get(url)
	if err != nil {
		return nil, fmt.Errorf("could not request query endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, interfaces.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var parsed api.AttestationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse query response: %w", err)
	}
	return &parsed, nil
}

func decodeError(resp *http.Response) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ledger endpoint returned non-200 response: %d", resp.StatusCode)
	}

	var parsed api.ErrorResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err == nil && parsed.Error != "" {
		return fmt.Errorf("ledger endpoint returned error %d: %s", resp.StatusCode, parsed.Error)
	}
	return fmt.Errorf("ledger endpoint returned error %d: %s", resp.StatusCode, string(bodyBytes))
}
