package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Ethernal-Tech/icon-infrastructure/common"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const (
	jsonRPCVersion = "2.0"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Provider executes JSON-RPC requests and returns raw result
type Provider interface {
	Request(ctx context.Context, method string, params any) (json.RawMessage, error)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      uint64 `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      json.RawMessage `json:"id"`
}

// HttpProvider is JSON-RPC 2.0 over HTTP client of an ICON node (for example https://ctz.solidwallet.io/api/v3).
// It is safe for concurrent use.
type HttpProvider struct {
	url          string
	client       *http.Client
	headers      map[string]string
	logger       hclog.Logger
	limiter      *rate.Limiter
	metrics      *providerMetrics
	retryOptions []common.RetryConfigOption
	retry        bool
	nextID       atomic.Uint64
}

var _ Provider = (*HttpProvider)(nil)

type ProviderOption func(*HttpProvider)

func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *HttpProvider) {
		p.client = client
	}
}

func WithLogger(logger hclog.Logger) ProviderOption {
	return func(p *HttpProvider) {
		p.logger = logger
	}
}

func WithHeader(key, value string) ProviderOption {
	return func(p *HttpProvider) {
		p.headers[key] = value
	}
}

// WithRateLimit limits outgoing requests to requestsPerSecond with the given burst
func WithRateLimit(requestsPerSecond float64, burst int) ProviderOption {
	return func(p *HttpProvider) {
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithRetry retries requests failing with network errors, 5xx/429 responses or
// transient node errors (pool overflow, lack of resource, system timeout)
func WithRetry(options ...common.RetryConfigOption) ProviderOption {
	return func(p *HttpProvider) {
		p.retry = true
		p.retryOptions = append(p.retryOptions, options...)
	}
}

// WithMetrics registers request counters and latency histograms
func WithMetrics(registerer prometheus.Registerer) ProviderOption {
	return func(p *HttpProvider) {
		p.metrics = newProviderMetrics(registerer)
	}
}

func NewHttpProvider(url string, options ...ProviderOption) *HttpProvider {
	p := &HttpProvider{
		url:     strings.TrimRight(url, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		headers: map[string]string{},
		logger:  hclog.NewNullLogger(),
	}

	for _, opt := range options {
		opt(p)
	}

	p.logger = p.logger.Named("provider")

	if p.retry {
		p.retryOptions = append([]common.RetryConfigOption{common.WithLogger(p.logger)}, p.retryOptions...)
	}

	return p
}

func (p *HttpProvider) URL() string {
	return p.url
}

// Request sends JSON-RPC request and returns raw result. JSON-RPC errors are returned as *RPCError.
func (p *HttpProvider) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if !p.retry {
		return p.request(ctx, method, params)
	}

	options := make([]common.RetryConfigOption, 0, len(p.retryOptions)+1)
	options = append(options, p.retryOptions...)
	options = append(options, common.WithOnRetry(func(int, error) {
		p.metrics.retried(method)
	}))

	return common.ExecuteWithRetry(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return p.request(ctx, method, params)
	}, options...)
}

func (p *HttpProvider) request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	id := p.nextID.Add(1)

	body, err := json.Marshal(rpcRequest{
		JSONRPC: jsonRPCVersion,
		Method:  method,
		Params:  params,
		ID:      id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range p.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()

	p.logger.Debug("sending request", "method", method, "id", id)

	resp, err := p.client.Do(req)
	if err != nil {
		p.metrics.observe(method, statusTransportError, start)

		return nil, err
	}

	defer resp.Body.Close()

	result, status, err := readResponse(resp)

	p.metrics.observe(method, status, start)

	if err != nil {
		p.logger.Debug("request failed", "method", method, "id", id, "err", err)

		return nil, err
	}

	return result, nil
}

// readResponse decodes JSON-RPC response. ICON nodes report JSON-RPC errors with 4xx/5xx status codes,
// so the body is decoded regardless of the status code.
func readResponse(resp *http.Response) (json.RawMessage, string, error) {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, statusTransportError, err
	}

	var response rpcResponse

	if err := json.Unmarshal(bodyBytes, &response); err != nil || (response.Error == nil && response.Result == nil) {
		if resp.StatusCode != http.StatusOK {
			return nil, statusHTTPError, &HTTPError{
				StatusCode: resp.StatusCode,
				Body:       truncate(string(bodyBytes), maxErrorBody),
			}
		}

		if err == nil {
			err = errors.New("neither result nor error present")
		}

		return nil, statusTransportError, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if response.Error != nil {
		return nil, statusRPCError, response.Error
	}

	return response.Result, statusOK, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}

	return s[:n]
}
