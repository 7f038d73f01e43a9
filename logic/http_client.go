package logic

import (
	"bytes"
	"context"
	"errors"
	"fedi_engine/shared"
	"fmt"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_http_client.go -package mocks fedi_engine/logic IApHttpClient

const maxResponseBytes = 4 * 1024 * 1024

var errResponseTooLarge = errors.New("response too large")

type ApRequest struct {
	Method string
	Url    string
	Header http.Header
	Body   []byte
}

type ApResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalUrl   string // After redirects
}

// StatusError is a response that arrived but was not 2xx.
type StatusError struct {
	StatusCode int
	Status     string
	Url        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %s", e.Url, e.Status)
}

func (e *StatusError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func (e *StatusError) IsRetryable() bool {
	return !e.IsClientError() || e.StatusCode == http.StatusTooManyRequests
}

type IApHttpClient interface {
	Do(ctx context.Context, req *ApRequest) (*ApResponse, error)
}

type apHttpClient struct {
	cfg        *shared.Config
	logger     shared.ILogger
	userAgent  shared.IUserAgent
	metrics    IMetrics
	client     *http.Client
	muLimiters sync.Mutex
	limiters   map[string]*rate.Limiter
}

func NewApHttpClient(
	cfg *shared.Config,
	logger shared.ILogger,
	userAgent shared.IUserAgent,
	metrics IMetrics,
) IApHttpClient {
	client := &http.Client{}
	client.Timeout = time.Second * time.Duration(cfg.Delivery.RequestTimeoutSec)
	return &apHttpClient{
		cfg:       cfg,
		logger:    logger,
		userAgent: userAgent,
		metrics:   metrics,
		client:    client,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (c *apHttpClient) getLimiter(host string) *rate.Limiter {
	c.muLimiters.Lock()
	defer c.muLimiters.Unlock()
	limiter, ok := c.limiters[host]
	if !ok {
		rps := c.cfg.Delivery.PerHostRps
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
		c.limiters[host] = limiter
	}
	return limiter
}

func (c *apHttpClient) Do(ctx context.Context, apReq *ApRequest) (*ApResponse, error) {

	obs := c.metrics.StartApubRequestOut(strings.ToLower(apReq.Method))
	defer obs.Finish()

	var body io.Reader
	if apReq.Body != nil {
		body = bytes.NewReader(apReq.Body)
	}
	req, err := http.NewRequestWithContext(ctx, apReq.Method, apReq.Url, body)
	if err != nil {
		return nil, err
	}
	for name, vals := range apReq.Header {
		for _, val := range vals {
			req.Header.Add(name, val)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		c.userAgent.AddUserAgent(req)
	}
	req.Header.Del("Host")

	if err = c.getLimiter(shared.NormalizeHost(req.URL.Host)).Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(respBody) > maxResponseBytes {
		return nil, fmt.Errorf("%s: %w", apReq.Url, errResponseTooLarge)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debugf("%s %s failed: %s: %s", apReq.Method, apReq.Url, resp.Status,
			shared.TruncateWithEllipsis(string(respBody), 256))
		return nil, &StatusError{resp.StatusCode, resp.Status, apReq.Url}
	}

	return &ApResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		FinalUrl:   resp.Request.URL.String(),
	}, nil
}
