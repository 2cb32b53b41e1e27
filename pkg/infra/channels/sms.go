package channels

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/notification"
	"github.com/bazaarly/backbone/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

type SMSConfig struct {
	BaseURL       string
	AccountSID    string
	AuthToken     string
	From          string
	RatePerSecond float64
}

// SMSDispatcher sends through an SMS gateway with a form-encoded API.
type SMSDispatcher struct {
	cfg  SMSConfig
	call *providerCall
}

func NewSMSDispatcher(logger *logrus.Logger, client httpx.Client, cfg SMSConfig) *SMSDispatcher {
	return &SMSDispatcher{
		cfg: cfg,
		call: &providerCall{
			name:     "sms",
			client:   client,
			breaker:  httpx.NewCircuitBreaker("sms", 30*time.Second, 5),
			throttle: newThrottle(cfg.RatePerSecond),
			logger:   logger,
		},
	}
}

func (d *SMSDispatcher) Channel() domain.Channel {
	return domain.ChannelSMS
}

func (d *SMSDispatcher) Dispatch(ctx context.Context, msg domain.Message) domain.Result {
	to := strings.TrimSpace(msg.Destination)
	if !strings.HasPrefix(to, "+") || len(to) < 8 {
		return domain.Failed(domain.NewDestinationUnresolved("%q is not an E.164 phone number", msg.Destination))
	}
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", d.cfg.From)
	form.Set("Body", msg.Body)
	encoded := form.Encode()

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", strings.TrimRight(d.cfg.BaseURL, "/"), url.PathEscape(d.cfg.AccountSID))
	reply, err := d.call.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, fmt.Errorf("failed to create sms request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(d.cfg.AccountSID, d.cfg.AuthToken)
		return req, nil
	})
	if err != nil {
		return domain.Failed(domain.NewProviderRejected("%v", err))
	}
	return replyResult("sms", reply, "sid")
}
