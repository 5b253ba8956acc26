package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	apihttp "github.com/GriffinCanCode/AgentOS/canvas/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/canvas"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/protocol"
)

var (
	ErrNotFound = errors.New("not found")
	ErrRejected = errors.New("request rejected")
)

// APIError is a non-2xx reply from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvas api: %d %s", e.StatusCode, e.Message)
}

// Unwrap maps status codes onto sentinel errors
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return ErrRejected
	}
	return nil
}

// Options configures a client
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RequestsPerSecond paces outgoing requests; zero means unlimited
	RequestsPerSecond float64
}

// DefaultOptions returns production-ready client settings
func DefaultOptions(baseURL string) Options {
	return Options{
		BaseURL:      baseURL,
		Timeout:      30 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// Client talks to the canvas REST API
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
}

// New creates a client. Transient failures (connection errors, 5xx, 429)
// are retried by the transport.
func New(opts Options) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = nil // Disable logging

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", "canvas-client/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{resty: restyClient, limiter: limiter}
}

// Health returns the server's health document
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// ListCanvases returns summaries of the live canvases
func (c *Client) ListCanvases(ctx context.Context) (*apihttp.ListResponse, error) {
	var out apihttp.ListResponse
	if err := c.do(ctx, http.MethodGet, "/canvases", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCanvas creates a canvas holding windows
func (c *Client) CreateCanvas(ctx context.Context, name string, windows []canvas.Window) (*apihttp.CanvasResponse, error) {
	var out apihttp.CanvasResponse
	req := apihttp.CreateCanvasRequest{Name: name, Windows: windows}
	if err := c.do(ctx, http.MethodPost, "/canvases", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Canvas returns a canvas's current state
func (c *Client) Canvas(ctx context.Context, id string) (*apihttp.CanvasResponse, error) {
	var out apihttp.CanvasResponse
	if err := c.do(ctx, http.MethodGet, "/canvases/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Send dispatches one envelope to a canvas
func (c *Client) Send(ctx context.Context, id string, msg protocol.Message) (*apihttp.DispatchResponse, error) {
	var out apihttp.DispatchResponse
	if err := c.do(ctx, http.MethodPost, "/canvases/"+id+"/messages", msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloseCanvas closes a canvas
func (c *Client) CloseCanvas(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/canvases/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var apiErr struct {
		Error string              `json:"error"`
		Data  *protocol.ErrorData `json:"data"`
	}
	req := c.resty.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" && apiErr.Data != nil {
			msg = apiErr.Data.Message
		}
		if msg == "" {
			msg = resp.Status()
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}
