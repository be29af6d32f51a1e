// Package odoo implements the InventoryBackend over the remote system's
// JSON-RPC web API: cookie-based session authentication, generic call_kw
// dispatch, capped exponential backoff on transient failures, and company
// context injection on every call.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vsinha/stockseed/pkg/domain/repositories"
)

const (
	defaultMaxAttempts = 5
	defaultTimeout     = 60 * time.Second
	defaultBaseDelay   = time.Second
	maxBackoff         = 30 * time.Second
	maxJitter          = 250 * time.Millisecond
)

// Config holds the connection settings for one remote instance.
type Config struct {
	BaseURL  string
	Database string
	Username string
	Password string

	// MaxAttempts bounds the retry loop for transient failures; 0 means
	// the default. Creation calls are still guarded by the caller's
	// origin lookup, never by blind retry.
	MaxAttempts int
	Timeout     time.Duration
	BaseDelay   time.Duration

	Logger *logrus.Logger
}

// Client is a JSON-RPC InventoryBackend over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logrus.Logger
	uid  int64
}

// New builds a client; Authenticate must be called before any data call.
func New(cfg Config) *Client {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout, Jar: jar},
		log:  cfg.Logger,
	}
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

type rpcResponse struct {
	Result json.RawMessage  `json:"result"`
	Error  *rpcErrorPayload `json:"error"`
}

// Authenticate opens a session; the session cookie rides in the jar on
// every subsequent call.
func (c *Client) Authenticate(ctx context.Context) error {
	result, err := c.post(ctx, "/web/session/authenticate", map[string]any{
		"db":       c.cfg.Database,
		"login":    c.cfg.Username,
		"password": c.cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	var session struct {
		UID int64 `json:"uid"`
	}
	if err := json.Unmarshal(result, &session); err != nil || session.UID == 0 {
		return &RPCError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	c.uid = session.UID
	c.log.WithField("uid", session.UID).Debug("session established")
	return nil
}

// CallKw invokes a model method with positional args and keyword args,
// injecting the company context.
func (c *Client) CallKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, companyID int64) (json.RawMessage, error) {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	callCtx := map[string]any{}
	if existing, ok := kwargs["context"].(map[string]any); ok {
		callCtx = existing
	}
	if companyID != 0 {
		callCtx["allowed_company_ids"] = []int64{companyID}
		callCtx["company_id"] = companyID
	}
	kwargs["context"] = callCtx

	return c.post(ctx, "/web/dataset/call_kw", map[string]any{
		"model":  model,
		"method": method,
		"args":   args,
		"kwargs": kwargs,
	})
}

// post sends one JSON-RPC request with retry on transient failures.
func (c *Client) post(ctx context.Context, path string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		Method:  "call",
		Params:  params,
		ID:      time.Now().UnixNano(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.log.WithFields(logrus.Fields{
				"attempt": attempt, "delay": delay.String(),
			}).Warn("retrying rpc call")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := c.postOnce(ctx, path, payload)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("exhausted %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

func (c *Client) postOnce(ctx context.Context, path string, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RPCError{Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, &RPCError{Code: resp.StatusCode, Message: resp.Status, Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RPCError{Code: resp.StatusCode, Message: resp.Status}
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &RPCError{Message: fmt.Sprintf("malformed response: %v", err), Retryable: true}
	}
	if envelope.Error != nil {
		return nil, &RPCError{
			Code:    envelope.Error.Code,
			Message: envelope.Error.Message,
			Detail:  envelope.Error.Data.Message,
		}
	}
	return envelope.Result, nil
}

// backoff doubles per attempt, capped at 30s, plus a small jitter so
// concurrent workers do not stampede.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.BaseDelay << attempt
	if delay > maxBackoff {
		delay = maxBackoff
	}
	jitter := min(maxJitter, c.cfg.BaseDelay)
	return delay + time.Duration(rand.Int63n(int64(jitter)+1))
}

// HasModule reports whether the named addon is installed; seeding
// requires the stock module.
func (c *Client) HasModule(ctx context.Context, name string) (bool, error) {
	records, err := c.SearchRead(ctx, "ir.module.module",
		[]repositories.Condition{
			repositories.Eq("name", name),
			repositories.Eq("state", "installed"),
		},
		repositories.SearchOptions{Fields: []string{"id"}, Limit: 1})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

// SearchRead returns records matching every condition.
func (c *Client) SearchRead(ctx context.Context, model string, domain []repositories.Condition, opts repositories.SearchOptions) ([]repositories.Record, error) {
	kwargs := map[string]any{}
	if len(opts.Fields) > 0 {
		kwargs["fields"] = opts.Fields
	}
	if opts.Limit > 0 {
		kwargs["limit"] = opts.Limit
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}

	result, err := c.CallKw(ctx, model, "search_read", []any{encodeDomain(domain)}, kwargs, opts.CompanyID)
	if err != nil {
		return nil, err
	}

	var records []repositories.Record
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s search result: %w", model, err)
	}
	return records, nil
}

// Create inserts one record and returns its identifier.
func (c *Client) Create(ctx context.Context, model string, values repositories.Record, companyID int64) (int64, error) {
	result, err := c.CallKw(ctx, model, "create", []any{map[string]any(values)}, nil, companyID)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := json.Unmarshal(result, &id); err != nil {
		return 0, fmt.Errorf("failed to decode %s create result: %w", model, err)
	}
	return id, nil
}

// Write updates the given records in place.
func (c *Client) Write(ctx context.Context, model string, ids []int64, values repositories.Record, companyID int64) error {
	_, err := c.CallKw(ctx, model, "write", []any{ids, map[string]any(values)}, nil, companyID)
	return err
}

// Invoke calls a workflow method on the given records.
func (c *Client) Invoke(ctx context.Context, model, method string, ids []int64, kwargs repositories.Record, companyID int64) (any, error) {
	result, err := c.CallKw(ctx, model, method, []any{ids}, kwargs, companyID)
	if err != nil {
		return nil, err
	}
	var decoded any
	if len(result) > 0 {
		if err := json.Unmarshal(result, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode %s.%s result: %w", model, method, err)
		}
	}
	return decoded, nil
}

func encodeDomain(domain []repositories.Condition) []any {
	encoded := make([]any, 0, len(domain))
	for _, cond := range domain {
		encoded = append(encoded, []any{cond.Field, cond.Op, cond.Value})
	}
	return encoded
}

// Verify interface compliance
var _ repositories.InventoryBackend = (*Client)(nil)
