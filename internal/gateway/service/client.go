package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/taxops/fbrgate/internal/config"
	"github.com/taxops/fbrgate/internal/gateway/domain"
	"github.com/taxops/fbrgate/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const maxResponseBody = 1 << 20

type ClientParams struct {
	fx.In

	Log     *zap.Logger
	Holder  *config.GatewayConfigHolder
	Tokens  domain.TokenSource
	Metrics *metrics.Metrics `optional:"true"`
}

type client struct {
	log     *zap.Logger
	holder  *config.GatewayConfigHolder
	tokens  domain.TokenSource
	metrics *metrics.Metrics
	http    *http.Client

	// baseURL, when set, overrides the configured environment base URL.
	// Tests point it at a local server.
	baseURL string
}

func NewClient(p ClientParams) domain.Client {
	return &client{
		log:     p.Log.Named("gateway.client"),
		holder:  p.Holder,
		tokens:  p.Tokens,
		metrics: p.Metrics,
		http:    &http.Client{Timeout: p.Holder.Current().RequestTimeout},
	}
}

func (c *client) Validate(ctx context.Context, creds domain.Credentials, payload domain.InvoicePayload) (domain.DecodedResponse, error) {
	return c.post(ctx, creds, payload, "validate")
}

// Submit posts the invoice for issuance. The empty-body success quirk is
// resolved here: a locally synthesized invoice number is substituted and
// the event logged at warn level so operators can chase the gateway.
func (c *client) Submit(ctx context.Context, creds domain.Credentials, payload domain.InvoicePayload) (domain.DecodedResponse, error) {
	decoded, err := c.post(ctx, creds, payload, "submit")
	if err != nil {
		return decoded, err
	}
	if decoded.Kind == domain.KindSuccess && decoded.EmptyBody {
		decoded.InvoiceNumber = "LOCAL-" + newCorrelationID()
		c.log.Warn("gateway returned 200 with an empty body; synthesized local invoice number",
			zap.String("invoice_number", decoded.InvoiceNumber),
			zap.String("environment", creds.Environment),
		)
	}
	return decoded, nil
}

func (c *client) post(ctx context.Context, creds domain.Credentials, payload domain.InvoicePayload, operation string) (domain.DecodedResponse, error) {
	cfg := c.holder.Current()
	env, ok := cfg.Environment(creds.Environment)
	if !ok {
		return domain.DecodedResponse{}, domain.ErrUnknownEnvironment
	}

	token, err := c.tokens.Token(ctx, creds)
	if err != nil {
		return domain.DecodedResponse{}, err
	}

	base := c.baseURL
	if base == "" {
		base = env.BaseURL
	}
	path := env.ValidatePath
	if operation == "submit" {
		path = env.SubmitPath
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.DecodedResponse{}, err
	}

	correlationID := newCorrelationID()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return domain.DecodedResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", correlationID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(operation, "transport_error", start)
		c.log.Warn("gateway request failed",
			zap.String("operation", operation),
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		return domain.DecodedResponse{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.record(operation, "transport_error", start)
		return domain.DecodedResponse{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	c.record(operation, fmt.Sprintf("%d", resp.StatusCode), start)

	decoded := DecodeResponse(resp.StatusCode, raw)
	c.log.Debug("gateway response decoded",
		zap.String("operation", operation),
		zap.String("correlation_id", correlationID),
		zap.Int("http_status", resp.StatusCode),
		zap.Int("kind", int(decoded.Kind)),
		zap.Bool("empty_body", decoded.EmptyBody),
	)
	return decoded, nil
}

func (c *client) record(operation, status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordGatewayRequest(operation, status, time.Since(start))
	}
}

func newCorrelationID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
