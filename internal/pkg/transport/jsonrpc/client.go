// Package jsonrpc provides a generic JSON-RPC 2.0 client implementation over HTTP.
// It is shared by every network adapter: EVM and Solana nodes take positional
// parameters, NEAR nodes take a single named parameter object.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrProviderReturnedError indicates that the remote JSON-RPC server returned an error response.
var ErrProviderReturnedError = errors.New("provider error")

// ProviderError is the error object of a JSON-RPC response. Name and Cause are
// only filled by providers that report structured errors (NEAR nodes answer
// e.g. name "HANDLER_ERROR" with cause "UNKNOWN_RECEIPT").
type ProviderError struct {
	Code    int
	Message string
	Name    string
	Cause   string
	Data    json.RawMessage
}

func (e *ProviderError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("%s: [%d] - %s (%s)", ErrProviderReturnedError, e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: [%d] - %s", ErrProviderReturnedError, e.Code, e.Message)
}

// Unwrap makes errors.Is(err, ErrProviderReturnedError) hold for every provider error.
func (e *ProviderError) Unwrap() error {
	return ErrProviderReturnedError
}

// response represents a standard JSON-RPC 2.0 response.
type response struct {
	JsonRPC string `json:"jsonrpc"`
	Error   *struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Name    string          `json:"name"`
		Data    json.RawMessage `json:"data"`
		Cause   *struct {
			Name string `json:"name"`
		} `json:"cause"`
	} `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Err returns a *ProviderError if the response includes a JSON-RPC error object.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}

	err := &ProviderError{
		Code:    r.Error.Code,
		Message: r.Error.Message,
		Name:    r.Error.Name,
		Data:    r.Error.Data,
	}
	if r.Error.Cause != nil {
		err.Cause = r.Error.Cause.Name
	}

	return err
}

// Client defines the interface for a generic JSON-RPC client.
type Client interface {
	// Fetch sends a request whose params are the given positional arguments.
	// It returns the raw JSON result or an error if the request or response fails.
	Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error)

	// Call sends a request whose params field is params itself, encoded as is
	// (typically a map or a struct for named parameters).
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// client sends JSON-RPC requests to the configured provider endpoint.
type client struct {
	providerEndpoint string
	httpClient       *retryablehttp.Client
}

// Compile-time assertion that client implements the Client interface.
var _ Client = (*client)(nil)

func (c *client) do(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      uuid.NewString(),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.providerEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var data response
	if err := json.Unmarshal(raw, &data); err != nil {
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d: %w", res.StatusCode, err)
		}

		return nil, err
	}

	if err := data.Err(); err != nil {
		return nil, err
	}

	return data.Result, nil
}

// Fetch sends a JSON-RPC request with positional parameters. The request id is a UUID string.
func (c *client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	return c.do(ctx, method, params)
}

// Call sends a JSON-RPC request with a named parameter object.
func (c *client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.do(ctx, method, params)
}

// NewClient returns a Client that sends requests to providerEndpoint through
// httpClient (see the transport/http package for a preconfigured one).
func NewClient(providerEndpoint string, httpClient *retryablehttp.Client) *client {
	return &client{
		providerEndpoint: providerEndpoint,
		httpClient:       httpClient,
	}
}
