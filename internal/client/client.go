// Package client is the register session orchestrator: a Go client of the
// caixa REST contract that UI surfaces drive. It keeps a local cached view
// of the register status, but the cache is only ever a hint — every
// mutating call re-derives authority from the store's response, corrects
// the cache on mismatch, and retries at most once before surfacing a
// terminal error. All store traffic runs through a circuit breaker so a
// downed backend fast-fails instead of stacking up blocked callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/apierror"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/dto"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/infra"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/middleware"
)

// APIError is a decoded error envelope from the store, carrying the wire
// kind so callers can branch without string matching.
type APIError struct {
	Kind   string
	Detail string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Kind, e.Detail, e.Status)
}

func IsValidation(err error) bool   { return hasKind(err, apierror.KindValidation) }
func IsConflict(err error) bool     { return hasKind(err, apierror.KindConflict) }
func IsNotFound(err error) bool     { return hasKind(err, apierror.KindNotFound) }
func IsUnauthorized(err error) bool { return hasKind(err, apierror.KindUnauthorized) }

// IsUnavailable covers network errors, timeouts, open circuit and 5xx —
// the retryable class.
func IsUnavailable(err error) bool {
	return hasKind(err, apierror.KindUnavailable) || errors.Is(err, infra.ErrCircuitOpen)
}

func hasKind(err error, kind string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// Client is safe for concurrent use by multiple UI surfaces.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	breaker *infra.CircuitBreaker

	// statusTTL bounds silent staleness of the cached status between
	// poll ticks and mutations.
	statusTTL time.Duration

	mu       sync.Mutex
	cached   *dto.RegisterResponse // nil with hasCache=true means "no open register"
	cachedAt time.Time
	hasCache bool

	// gen implements last-writer-wins: a cache write from an in-flight
	// call that has been superseded by a newer one is discarded.
	gen atomic.Uint64
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		http:      &http.Client{Timeout: 10 * time.Second},
		breaker:   infra.NewCircuitBreaker(infra.DefaultCBConfig()),
		statusTTL: 15 * time.Second,
	}
}

// ── Status ───────────────────────────────────────────────────────────────────

// Status returns the current register, nil when none is open. Served from
// the local cache while fresh; read through to the store otherwise.
func (c *Client) Status(ctx context.Context) (*dto.RegisterResponse, error) {
	c.mu.Lock()
	if c.hasCache && time.Since(c.cachedAt) < c.statusTTL {
		reg := c.cached
		c.mu.Unlock()
		return reg, nil
	}
	c.mu.Unlock()
	return c.RefreshStatus(ctx)
}

// RefreshStatus bypasses the cache and re-reads the store.
func (c *Client) RefreshStatus(ctx context.Context) (*dto.RegisterResponse, error) {
	gen := c.gen.Load()

	var reg dto.RegisterResponse
	found, err := c.getOptional(ctx, "/caixa/status", &reg)
	if err != nil {
		return nil, err
	}

	var snapshot *dto.RegisterResponse
	if found {
		snapshot = &reg
	}
	c.storeCache(gen, snapshot)
	return snapshot, nil
}

// InvalidateStatus drops the cached hint; the next Status call re-reads.
func (c *Client) InvalidateStatus() {
	c.mu.Lock()
	c.hasCache = false
	c.cached = nil
	c.mu.Unlock()
}

// StartPolling refreshes the status on a fixed interval until ctx is done,
// so the cached view is never silently staler than the interval.
func (c *Client) StartPolling(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := c.RefreshStatus(ctx); err != nil {
					log.Debug().Err(err).Msg("status poll failed")
				}
			}
		}
	}()
}

// ── Register operations ──────────────────────────────────────────────────────

func (c *Client) OpenRegister(ctx context.Context, openingBalance decimal.Decimal, observation *string) (*dto.RegisterResponse, error) {
	req := dto.OpenRegisterRequest{OpeningBalance: openingBalance, Observation: observation}
	var resp dto.RegisterResponse
	if err := c.mutate(ctx, http.MethodPost, "/caixa/open", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CloseRegister(ctx context.Context, registerID string, observation *string) (*dto.RegisterReportResponse, error) {
	req := dto.CloseRegisterRequest{Observation: observation}
	var resp dto.RegisterReportResponse
	path := "/caixa/" + registerID + "/close"
	if err := c.mutate(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RecordMovement(ctx context.Context, registerID string, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	var resp dto.MovementResponse
	path := "/caixa/" + registerID + "/movimentacao"
	if err := c.mutate(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SettleOrder attaches a pending order to the register. The store absorbs
// duplicate settlements idempotently, so concurrent callers converge on
// the same movement.
func (c *Client) SettleOrder(ctx context.Context, registerID, orderID string) (*dto.MovementResponse, error) {
	var resp dto.MovementResponse
	path := "/caixa/" + registerID + "/pedido/" + orderID + "/movimentacao"
	if err := c.mutate(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Report(ctx context.Context, registerID string) (*dto.RegisterReportResponse, error) {
	var resp dto.RegisterReportResponse
	if err := c.do(ctx, http.MethodGet, "/caixa/"+registerID+"/report", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ── Orders / payments ────────────────────────────────────────────────────────

func (c *Client) Orders(ctx context.Context) ([]dto.OrderResponse, error) {
	var orders []dto.OrderResponse
	if err := c.do(ctx, http.MethodGet, "/pedidos", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PendingOrders lists the orders awaiting settlement.
func (c *Client) PendingOrders(ctx context.Context) ([]dto.OrderResponse, error) {
	var orders []dto.OrderResponse
	if err := c.do(ctx, http.MethodGet, "/pedidos/pendentes", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) CapturePayment(ctx context.Context, orderID string, amount decimal.Decimal, method string) (*dto.PaymentResponse, error) {
	req := dto.CapturePaymentRequest{Amount: amount, Method: method}
	var resp dto.PaymentResponse
	if err := c.mutate(ctx, http.MethodPost, "/pagamentos/"+orderID, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ── Internals ────────────────────────────────────────────────────────────────

// mutate runs one mutating call with the retry discipline:
//   - conflict (store state diverged from our hint): correct the cache from
//     the store, retry once, then surface;
//   - unavailable (network/timeout/5xx/circuit): retry once after
//     re-validating status, then surface;
//   - validation/unauthorized/not-found: surface immediately, never retried.
//
// After any failed attempt the status is re-queried before the outcome is
// reported, so the caller never acts on the pre-call view of the register.
func (c *Client) mutate(ctx context.Context, method, path string, body, out interface{}) error {
	gen := c.gen.Add(1)

	err := c.do(ctx, method, path, body, out)
	if err == nil {
		c.refreshAfterMutation(ctx, gen)
		return nil
	}

	if !IsConflict(err) && !IsUnavailable(err) {
		// Terminal outcome, but the register may still have changed
		// out-of-band; re-read before reporting so the caller never
		// acts on the pre-call view.
		if !IsUnauthorized(err) {
			c.refreshAfterMutation(ctx, gen)
		}
		return err
	}

	// Correct the cached view before the single retry — the conflict case
	// usually means the register changed out-of-band (another tab, another
	// operator).
	c.refreshAfterMutation(ctx, gen)

	retryErr := c.do(ctx, method, path, body, out)
	c.refreshAfterMutation(ctx, gen)
	if retryErr == nil {
		return nil
	}
	return retryErr
}

// refreshAfterMutation re-reads the status, discarding the result when a
// newer mutation has started since (last-writer-wins).
func (c *Client) refreshAfterMutation(ctx context.Context, gen uint64) {
	var reg dto.RegisterResponse
	found, err := c.getOptional(ctx, "/caixa/status", &reg)
	if err != nil {
		// Can't confirm — drop the hint entirely rather than keep a view
		// we know may be wrong.
		c.InvalidateStatus()
		return
	}
	var snapshot *dto.RegisterResponse
	if found {
		snapshot = &reg
	}
	c.storeCache(gen, snapshot)
}

func (c *Client) storeCache(gen uint64, reg *dto.RegisterResponse) {
	if c.gen.Load() != gen {
		// A newer call owns the cache now; this result is stale.
		return
	}
	c.mu.Lock()
	c.cached = reg
	c.cachedAt = time.Now()
	c.hasCache = true
	c.mu.Unlock()
}

// getOptional is do() for endpoints where 204 means "nothing there".
func (c *Client) getOptional(ctx context.Context, path string, out interface{}) (bool, error) {
	err := c.do(ctx, http.MethodGet, path, nil, out)
	if errors.Is(err, errNoContent) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var errNoContent = errors.New("no content")

// do runs one round trip through the breaker. Only unavailability feeds
// the breaker's failure count: a 4xx envelope or a 204 marker means the
// store is healthy and must not contribute to tripping it.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var callErr error
	err := c.breaker.Execute(func() error {
		callErr = c.roundTrip(ctx, method, path, body, out)
		if callErr != nil && hasKind(callErr, apierror.KindUnavailable) {
			return callErr
		}
		return nil
	})
	if err != nil {
		return err
	}
	return callErr
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failure or timeout, the retryable class.
		return &APIError{Kind: apierror.KindUnavailable, Detail: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return errNoContent
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	default:
		return decodeError(resp)
	}
}

func decodeError(resp *http.Response) error {
	var envelope apierror.APIError
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Kind == "" {
		kind := apierror.KindInternal
		if resp.StatusCode >= 500 {
			kind = apierror.KindUnavailable
		}
		return &APIError{Kind: kind, Detail: resp.Status, Status: resp.StatusCode}
	}
	kind := envelope.Kind
	if resp.StatusCode >= 500 {
		kind = apierror.KindUnavailable
	}
	return &APIError{Kind: kind, Detail: envelope.Detail, Status: resp.StatusCode}
}
