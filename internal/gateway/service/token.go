package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taxops/fbrgate/internal/config"
	"github.com/taxops/fbrgate/internal/gateway/domain"
	"github.com/taxops/fbrgate/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type TokenParams struct {
	fx.In

	Log     *zap.Logger
	Holder  *config.GatewayConfigHolder
	Redis   redis.UniversalClient `optional:"true"`
	Metrics *metrics.Metrics      `optional:"true"`
}

type tokenSource struct {
	log     *zap.Logger
	holder  *config.GatewayConfigHolder
	redis   redis.UniversalClient
	metrics *metrics.Metrics
	client  *http.Client

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewTokenSource(p TokenParams) domain.TokenSource {
	return &tokenSource{
		log:     p.Log.Named("gateway.token"),
		holder:  p.Holder,
		redis:   p.Redis,
		metrics: p.Metrics,
		client:  &http.Client{Timeout: 12 * time.Second},
		sleep:   sleepContext,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token returns a bearer token for the tenant, fetching one from the
// gateway's token endpoint when the cache misses. Acquisition is retried
// up to the configured attempt limit with a linearly growing backoff
// (unit × attempt); exhaustion reports ErrTokenExhausted. Missing
// credentials are a precondition failure, not a retryable one.
func (t *tokenSource) Token(ctx context.Context, creds domain.Credentials) (string, error) {
	if strings.TrimSpace(creds.ClientID) == "" || strings.TrimSpace(creds.ClientSecret) == "" {
		return "", domain.ErrNoToken
	}

	cfg := t.holder.Current()
	env, ok := cfg.Environment(creds.Environment)
	if !ok {
		return "", domain.ErrUnknownEnvironment
	}

	cacheKey := fmt.Sprintf("fbrgate:token:%s:%s", creds.TenantID, strings.ToLower(creds.Environment))
	if token := t.cachedToken(ctx, cacheKey); token != "" {
		return token, nil
	}

	maxAttempts := cfg.TokenMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		token, err := t.fetch(ctx, env, creds)
		if err == nil {
			t.recordAcquisition("ok")
			t.cacheToken(ctx, cacheKey, token, cfg.TokenCacheTTL)
			return token, nil
		}
		lastErr = err
		t.recordAcquisition("retry")
		t.log.Warn("token acquisition failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.String("environment", creds.Environment),
			zap.Error(err),
		)
		if attempt == maxAttempts {
			break
		}
		if err := t.sleep(ctx, cfg.TokenBackoffUnit*time.Duration(attempt)); err != nil {
			return "", err
		}
	}

	t.recordAcquisition("exhausted")
	return "", fmt.Errorf("%w: %v", domain.ErrTokenExhausted, lastErr)
}

func (t *tokenSource) fetch(ctx context.Context, env config.GatewayEnvironment, creds domain.Credentials) (string, error) {
	body, err := json.Marshal(map[string]string{
		"clientId":     creds.ClientID,
		"clientSecret": creds.ClientSecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.BaseURL+env.TokenPath, strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	token := firstNonEmpty(decoded.AccessToken, decoded.Token)
	if token == "" {
		return "", domain.ErrNoToken
	}
	return token, nil
}

func (t *tokenSource) cachedToken(ctx context.Context, key string) string {
	if t.redis == nil {
		return ""
	}
	token, err := t.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			t.log.Debug("token cache read failed", zap.Error(err))
		}
		return ""
	}
	return token
}

func (t *tokenSource) cacheToken(ctx context.Context, key, token string, ttl time.Duration) {
	if t.redis == nil || ttl <= 0 {
		return
	}
	if err := t.redis.Set(ctx, key, token, ttl).Err(); err != nil {
		t.log.Debug("token cache write failed", zap.Error(err))
	}
}

func (t *tokenSource) recordAcquisition(outcome string) {
	if t.metrics != nil {
		t.metrics.RecordTokenAcquisition(outcome)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
