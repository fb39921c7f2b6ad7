package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxops/fbrgate/internal/config"
	"github.com/taxops/fbrgate/internal/gateway/domain"
	"go.uber.org/zap"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(ctx context.Context, creds domain.Credentials) (string, error) {
	return s.token, s.err
}

func testClient(t *testing.T, baseURL string, tokens domain.TokenSource) *client {
	t.Helper()
	cfg := config.DefaultGatewayConfig()
	cfg.Environments = map[string]config.GatewayEnvironment{
		"sandbox": {BaseURL: baseURL, ValidatePath: "/validate", SubmitPath: "/submit", TokenPath: "/token"},
	}
	return &client{
		log:     zap.NewNop(),
		holder:  config.NewStaticGatewayConfigHolder(cfg),
		tokens:  tokens,
		http:    &http.Client{Timeout: time.Second},
		baseURL: baseURL,
	}
}

func TestClientValidateSendsBearerAndDecodes(t *testing.T) {
	var gotAuth, gotPath, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotReqID = r.Header.Get("X-Request-Id")
		w.Write([]byte(`{"invoiceNumber": "N1", "validationResponse": {"statusCode": "00"}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, staticTokens{token: "tok-1"})
	decoded, err := c.Validate(context.Background(), domain.Credentials{Environment: "sandbox"}, domain.InvoicePayload{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "/validate", gotPath)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, domain.KindSuccess, decoded.Kind)
	assert.Equal(t, "N1", decoded.InvoiceNumber)
}

func TestClientSubmitSynthesizesNumberOnEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submit", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, staticTokens{token: "tok-1"})
	decoded, err := c.Submit(context.Background(), domain.Credentials{Environment: "sandbox"}, domain.InvoicePayload{})
	require.NoError(t, err)
	assert.Equal(t, domain.KindSuccess, decoded.Kind)
	assert.True(t, decoded.EmptyBody)
	require.NotEmpty(t, decoded.InvoiceNumber)
	assert.Contains(t, decoded.InvoiceNumber, "LOCAL-")
}

func TestClientTokenFailureBlocksCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, staticTokens{err: domain.ErrNoToken})
	_, err := c.Validate(context.Background(), domain.Credentials{Environment: "sandbox"}, domain.InvoicePayload{})
	assert.ErrorIs(t, err, domain.ErrNoToken)
	assert.False(t, called)
}

func TestClientTransportErrorIsGatewayUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := testClient(t, srv.URL, staticTokens{token: "tok-1"})
	_, err := c.Validate(context.Background(), domain.Credentials{Environment: "sandbox"}, domain.InvoicePayload{})
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}
