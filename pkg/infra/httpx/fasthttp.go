package httpx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout             = 10 * time.Second
	DefaultMaxConnsPerHost     = 128
	DefaultMaxIdleConnDuration = 10 * time.Second
	DefaultMaxResponseBodySize = 4 * 1024 * 1024
)

// Client is the outbound HTTP surface used by provider adapters.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

type FastHTTPClientOptions struct {
	// Timeout bounds a request when its context carries no earlier deadline.
	Timeout             time.Duration
	MaxConnsPerHost     int
	MaxIdleConnDuration time.Duration
	MaxResponseBodySize int
	UserAgent           string
}

type FastHTTPClientOption func(*FastHTTPClientOptions)

func WithTimeout(timeout time.Duration) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.Timeout = timeout
	}
}

func WithMaxConnsPerHost(max int) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxConnsPerHost = max
	}
}

func WithMaxResponseBodySize(size int) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxResponseBodySize = size
	}
}

func WithUserAgent(userAgent string) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.UserAgent = userAgent
	}
}

// FastHTTPClient adapts fasthttp to the net/http request and response types.
type FastHTTPClient struct {
	client    *fasthttp.Client
	timeout   time.Duration
	userAgent string
}

func NewFastHTTPClient(opts ...FastHTTPClientOption) Client {
	options := &FastHTTPClientOptions{
		Timeout:             DefaultTimeout,
		MaxConnsPerHost:     DefaultMaxConnsPerHost,
		MaxIdleConnDuration: DefaultMaxIdleConnDuration,
		MaxResponseBodySize: DefaultMaxResponseBodySize,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &FastHTTPClient{
		client: &fasthttp.Client{
			MaxConnsPerHost:     options.MaxConnsPerHost,
			MaxIdleConnDuration: options.MaxIdleConnDuration,
			MaxResponseBodySize: options.MaxResponseBodySize,
			ReadTimeout:         options.Timeout,
			WriteTimeout:        options.Timeout,
		},
		timeout:   options.Timeout,
		userAgent: options.UserAgent,
	}
}

func (c *FastHTTPClient) Do(req *http.Request) (*http.Response, error) {
	fastReq := fasthttp.AcquireRequest()
	fastResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(fastReq)
	defer fasthttp.ReleaseResponse(fastResp)

	if req.URL != nil {
		fastReq.SetRequestURI(req.URL.String())
	}
	fastReq.Header.SetMethod(req.Method)
	if req.Host != "" {
		fastReq.Header.SetHost(req.Host)
	}
	for key, values := range req.Header {
		for _, value := range values {
			fastReq.Header.Add(key, value)
		}
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		fastReq.Header.SetUserAgent(c.userAgent)
	}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		fastReq.SetBodyRaw(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := req.Context().Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(fastReq, fastResp, deadline); err != nil {
		return nil, err
	}

	body := make([]byte, len(fastResp.Body()))
	copy(body, fastResp.Body())

	headers := make(http.Header)
	fastResp.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})

	status := fastResp.StatusCode()
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
