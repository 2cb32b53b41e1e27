package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/bazaarly/backbone/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const emailPath = "/emails"

type EmailConfig struct {
	BaseURL       string
	APIKey        string
	From          string
	RatePerSecond float64
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// EmailDispatcher sends through a transactional email HTTP API.
type EmailDispatcher struct {
	cfg  EmailConfig
	call *providerCall
}

func NewEmailDispatcher(logger *logrus.Logger, client httpx.Client, cfg EmailConfig) *EmailDispatcher {
	return &EmailDispatcher{
		cfg: cfg,
		call: &providerCall{
			name:     "email",
			client:   client,
			breaker:  httpx.NewCircuitBreaker("email", 30*time.Second, 5),
			throttle: newThrottle(cfg.RatePerSecond),
			logger:   logger,
		},
	}
}

func (d *EmailDispatcher) Channel() domain.Channel {
	return domain.ChannelEmail
}

// EncodeValue escapes template values embedded in the HTML body.
func (d *EmailDispatcher) EncodeValue(raw string) string {
	return html.EscapeString(raw)
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, msg domain.Message) domain.Result {
	if !strings.Contains(msg.Destination, "@") {
		return domain.Failed(domain.NewDestinationUnresolved("%q is not an email address", msg.Destination))
	}
	body, err := json.Marshal(emailPayload{
		From:    d.cfg.From,
		To:      msg.Destination,
		Subject: msg.Subject,
		HTML:    msg.Body,
	})
	if err != nil {
		return domain.Failed(domain.NewProviderRejected("failed to encode email: %v", err))
	}

	reply, err := d.call.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(d.cfg.BaseURL, "/")+emailPath, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create email request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)
		return req, nil
	})
	if err != nil {
		return domain.Failed(domain.NewProviderRejected("%v", err))
	}
	return replyResult("email", reply, "id")
}

func replyResult(provider string, reply providerReply, idKey string) domain.Result {
	if reply.status < 200 || reply.status >= 300 {
		reason := providerMessage(reply.body, "message")
		if reason == "" {
			reason = http.StatusText(reply.status)
		}
		return domain.Failed(domain.NewProviderRejected("%s provider status %d: %s", provider, reply.status, reason))
	}
	id, err := providerID(reply.body, idKey)
	if err != nil {
		return domain.Failed(domain.NewProviderRejected("%s: %v", provider, err))
	}
	return domain.Delivered(id)
}
