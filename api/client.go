package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flashbots/go-utils/signature"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// Client is an HTTP client for the registry API. Mutations are signed with
// the client's key, which is the caller identity on the ledger.
type Client struct {
	baseURL string
	signer  *signature.Signer
	http    *http.Client
}

// NewClient creates a client for the API at baseURL. signer may be nil for
// a read-only client.
func NewClient(baseURL string, signer *signature.Signer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Caller returns the signing address, or an error for a read-only client.
func (c *Client) Caller() (interfaces.Address, error) {
	if c.signer == nil {
		return interfaces.Address{}, fmt.Errorf("client has no signing key")
	}
	return c.signer.Address(), nil
}

// CheckCaller fails if caller is not the address the client signs with.
func (c *Client) CheckCaller(caller interfaces.Address) error {
	own, err := c.Caller()
	if err != nil {
		return err
	}
	if own != caller {
		return fmt.Errorf("client signs as %s, not %s", own.Hex(), caller.Hex())
	}
	return nil
}

// Submit posts a signed JSON body and decodes the receipt. Ledger failures are
// returned as *interfaces.Failure together with the failed receipt.
func (c *Client) Submit(ctx context.Context, path string, body any) (*interfaces.Receipt, error) {
	if c.signer == nil {
		return nil, fmt.Errorf("client has no signing key")
	}
	target, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path: %w", err)
	}
	// the signed path includes any prefix carried by baseURL
	payload, sig, err := SignRequest(c.signer, http.MethodPost, target.Path, body, DefaultRequestTTL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, sig)

	var receipt interfaces.Receipt
	if err := c.do(req, &receipt); err != nil {
		var apiErr *ResponseError
		if errors.As(err, &apiErr) && apiErr.Body.Receipt != nil {
			return apiErr.Body.Receipt, apiErr.Failure()
		}
		return nil, err
	}
	return &receipt, nil
}

// Get fetches path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("could not initialize request: %w", err)
	}
	if err := c.do(req, out); err != nil {
		var apiErr *ResponseError
		if errors.As(err, &apiErr) {
			return apiErr.Failure()
		}
		return err
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respErr := &ResponseError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, &respErr.Body); err != nil {
			respErr.Body.Message = strings.TrimSpace(string(body))
		}
		return respErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}

// ResponseError is a non-2xx API response.
type ResponseError struct {
	StatusCode int
	Body       ErrorResponse
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body.Message)
}

// Failure rebuilds the ledger failure carried by the response.
func (e *ResponseError) Failure() error {
	if e.Body.Error == "" || e.Body.Error == "internal" {
		return e
	}
	return interfaces.FailureFromKind(e.Body.Error, e.Body.Message)
}
