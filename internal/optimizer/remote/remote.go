// Package remote implements the optimizer client over JSON HTTP endpoints.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/optimizer"
)

const (
	// DefaultTimeout is the per call timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResponseSize is the default limit of a response body.
	DefaultMaxResponseSize = 32 << 20

	taskIDKey = "task_id"
)

// ClientConfig is the configuration of the remote optimizer client.
type ClientConfig struct {
	// BaseURL is the optimizer base URL, method endpoint paths are joined to it.
	BaseURL string
	// Timeout is the timeout of each remote call.
	Timeout time.Duration
	// HTTPClient is the HTTP client used for the calls.
	HTTPClient *http.Client
	// MaxResponseSize is the maximum response body size in bytes, bigger responses fail.
	MaxResponseSize int64
	// Logger for logging.
	Logger log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https, got %q", u.Scheme)
	}

	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}

	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "optimizer.remote"})

	return nil
}

// Client is the remote optimizer HTTP client.
type Client struct {
	baseURL         string
	timeout         time.Duration
	httpClient      *http.Client
	maxResponseSize int64
	logger          log.Logger
}

// NewClient returns a new remote optimizer client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		baseURL:         cfg.BaseURL,
		timeout:         cfg.Timeout,
		httpClient:      cfg.HTTPClient,
		maxResponseSize: cfg.MaxResponseSize,
		logger:          cfg.Logger,
	}, nil
}

var _ optimizer.Client = &Client{}

func (c *Client) Start(ctx context.Context, method model.MethodDescriptor, bundle *model.Row) (string, error) {
	if bundle == nil {
		bundle = model.NewRow()
	}
	body, err := json.Marshal(bundle)
	if err != nil {
		return "", fmt.Errorf("could not encode parameter bundle: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, method.StartURL(c.baseURL), body)
	if err != nil {
		return "", err
	}

	id, err := decodeTaskID(data)
	if err != nil {
		return "", fmt.Errorf("method %s start response: %w", method.Name, err)
	}

	c.logger.Debugf("Remote task %s started on method %s", id, method.Name)
	return id, nil
}

func (c *Client) Progress(ctx context.Context, method model.MethodDescriptor, taskID string) (*model.Progress, error) {
	u, err := url.Parse(method.ProgressURL(c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid progress URL: %w", err)
	}
	q := u.Query()
	q.Set(taskIDKey, taskID)
	u.RawQuery = q.Encode()

	data, err := c.do(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	p, err := decodeProgress(data)
	if err != nil {
		return nil, fmt.Errorf("method %s progress response: %w", method.Name, err)
	}

	return p, nil
}

func (c *Client) Stop(ctx context.Context, method model.MethodDescriptor, taskID string) error {
	body, err := json.Marshal(map[string]string{taskIDKey: taskID})
	if err != nil {
		return fmt.Errorf("could not encode stop request: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, method.StopURL(c.baseURL), body)
	if err != nil {
		return err
	}

	c.logger.Debugf("Remote task %s stopped on method %s", taskID, method.Name)
	return nil
}

func (c *Client) do(ctx context.Context, httpMethod, u string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, httpMethod, u, r)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", httpMethod, u, model.ErrRemoteUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s %s: could not read response: %w: %w", httpMethod, u, model.ErrRemoteUnreachable, err)
	}
	if int64(len(data)) > c.maxResponseSize {
		return nil, fmt.Errorf("%s %s: response bigger than %d bytes: %w", httpMethod, u, c.maxResponseSize, model.ErrRemoteUnreachable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: unexpected status %d: %w", httpMethod, u, resp.StatusCode, model.ErrRemoteUnreachable)
	}

	return data, nil
}

// decodeTaskID accepts `{"task_id": ...}`, `{"id": ...}` or a bare JSON string or number.
func decodeTaskID(data []byte) (string, error) {
	var v model.Value
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrMalformedRemotePayload, err)
	}

	if obj, ok := v.AsObject(); ok {
		found := false
		for _, k := range []string{taskIDKey, "id"} {
			if v, found = obj.Get(k); found {
				break
			}
		}
		if !found {
			return "", fmt.Errorf("missing task id: %w", model.ErrMalformedRemotePayload)
		}
	}

	var id string
	switch v.Kind() {
	case model.KindString:
		id, _ = v.AsString()
		id = strings.TrimSpace(id)
	case model.KindNumber:
		// Ids are opaque, integer literals are kept as received whatever their size.
		if lit, ok := v.IntegerLiteral(); ok {
			id = lit
		} else if n, ok := v.AsInt(); ok {
			id = strconv.FormatInt(n, 10)
		}
	}
	if id == "" {
		return "", fmt.Errorf("invalid task id %s: %w", v, model.ErrMalformedRemotePayload)
	}

	return id, nil
}

// decodeProgress decodes a progress payload, a payload without data returns nil progress.
func decodeProgress(data []byte) (*model.Progress, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var v model.Value
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMalformedRemotePayload, err)
	}
	if v.IsNull() {
		return nil, nil
	}

	obj, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("expected object, got %s: %w", v.Kind(), model.ErrMalformedRemotePayload)
	}
	if obj.Len() == 0 {
		return nil, nil
	}

	p := &model.Progress{Results: []*model.Row{}}
	if s, ok := obj.Get("status"); ok && !s.IsNull() {
		status, ok := s.AsString()
		if !ok {
			return nil, fmt.Errorf("status must be a string, got %s: %w", s.Kind(), model.ErrMalformedRemotePayload)
		}
		p.Status = status
	}
	p.Progress, _ = obj.Get("progress")
	p.Total, _ = obj.Get("total")

	if rs, ok := obj.Get("results"); ok && !rs.IsNull() {
		arr, ok := rs.AsArray()
		if !ok {
			return nil, fmt.Errorf("results must be a list, got %s: %w", rs.Kind(), model.ErrMalformedRemotePayload)
		}
		for i, e := range arr {
			row, ok := e.AsObject()
			if !ok {
				return nil, fmt.Errorf("result %d must be an object, got %s: %w", i, e.Kind(), model.ErrMalformedRemotePayload)
			}
			p.Results = append(p.Results, row)
		}
	}

	return p, nil
}
