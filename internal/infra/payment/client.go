// Package payment charges and refunds appointments through Stripe.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"mikvah-scheduler/internal/pkg/config"
	"mikvah-scheduler/internal/pkg/errs"
	"mikvah-scheduler/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/charge"
	"github.com/stripe/stripe-go/v76/refund"
	"golang.org/x/time/rate"
)

type Client struct {
	charges *charge.Client
	refunds *refund.Client
	limiter *rate.Limiter
}

func NewClient(cfg config.PaymentConfig) *Client {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(strings.TrimRight(cfg.BaseURL, "/")),
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     slogLogger{},
	})
	return &Client{
		charges: &charge.Client{B: backend, Key: cfg.APISecret},
		refunds: &refund.Client{B: backend, Key: cfg.APISecret},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}
}

var _ commands.PaymentGateway = (*Client)(nil)

func (c *Client) Charge(ctx context.Context, req commands.ChargeRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errs.Wrap(err, "payment rate limit wait")
	}

	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(req.Currency),
		Customer: stripe.String(req.CustomerRef),
	}
	if req.StatementDescriptor != "" {
		params.StatementDescriptor = stripe.String(req.StatementDescriptor)
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	ch, err := c.charges.New(params)
	if err != nil {
		return "", errs.Wrap(declined(err), "charge failed")
	}
	if ch.ID == "" {
		return "", errs.New("gateway response has no charge id")
	}
	return ch.ID, nil
}

func (c *Client) Refund(ctx context.Context, chargeID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errs.Wrap(err, "payment rate limit wait")
	}

	params := &stripe.RefundParams{Charge: stripe.String(chargeID)}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	re, err := c.refunds.New(params)
	if err != nil {
		return "", errs.Wrapf(err, "refund of %s failed", chargeID)
	}
	if re.ID == "" {
		return "", errs.Newf("gateway response has no refund id for %s", chargeID)
	}
	return re.ID, nil
}

// declined turns a card error into a CardDeclinedError and passes anything else through.
func declined(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) || se.Type != stripe.ErrorTypeCard {
		return err
	}
	reason := se.Msg
	if reason == "" {
		reason = string(se.Code)
	}
	return &commands.CardDeclinedError{Reason: reason}
}

// slogLogger routes the SDK's own logging into slog.
type slogLogger struct{}

func (slogLogger) Debugf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Infof(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Warnf(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...), "component", "stripe")
}

func (slogLogger) Errorf(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...), "component", "stripe")
}
