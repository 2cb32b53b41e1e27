package channels

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bazaarly/backbone/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
	"golang.org/x/time/rate"
)

const maxProviderBody = 64 * 1024

var ErrProviderStatus = errors.New("provider returned an error status")

// providerCall is one HTTP exchange with an outbound provider, throttled and
// guarded by a circuit breaker. Non-2xx replies are returned as responses.
type providerCall struct {
	name     string
	client   httpx.Client
	breaker  httpx.CircuitBreaker
	throttle *rate.Limiter
	logger   *logrus.Logger
}

type providerReply struct {
	status int
	body   []byte
}

func newThrottle(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := max(int(perSecond), 1)
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (p *providerCall) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (providerReply, error) {
	if err := p.throttle.Wait(ctx); err != nil {
		return providerReply{}, fmt.Errorf("%s throttle: %w", p.name, err)
	}

	var reply providerReply
	err := p.breaker.Execute(func() error {
		req, err := build(ctx)
		if err != nil {
			return err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call %s provider: %w", p.name, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
		if err != nil {
			return fmt.Errorf("%s response read error: %w", p.name, err)
		}
		reply = providerReply{status: resp.StatusCode, body: body}
		// 5xx counts against the breaker, 4xx is the caller's fault
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %d", ErrProviderStatus, resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.WithError(err).WithField("provider", p.name).Warn("provider call failed")
		}
		return reply, err
	}
	return reply, nil
}

// providerMessage extracts the most specific error text a provider sent.
func providerMessage(body []byte, keys ...string) string {
	var parser fastjson.Parser
	v, err := parser.ParseBytes(body)
	if err != nil {
		if len(body) > 200 {
			body = body[:200]
		}
		return string(body)
	}
	for _, key := range keys {
		if s := v.GetStringBytes(key); len(s) > 0 {
			return string(s)
		}
		if s := v.GetStringBytes("error", key); len(s) > 0 {
			return string(s)
		}
	}
	if s := v.GetStringBytes("error"); len(s) > 0 {
		return string(s)
	}
	return ""
}

// providerID returns the string at key in a JSON reply.
func providerID(body []byte, key string) (string, error) {
	var parser fastjson.Parser
	v, err := parser.ParseBytes(body)
	if err != nil {
		return "", fmt.Errorf("invalid provider response: %w", err)
	}
	id := string(v.GetStringBytes(key))
	if id == "" {
		return "", fmt.Errorf("provider response has no %q", key)
	}
	return id, nil
}
