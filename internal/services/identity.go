package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"

	"jobcard_portal/internal/logging"
)

// Identity is the subset of OIDC userinfo claims the portal uses.
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name"`
}

type IdentityProvider interface {
	FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error)
}

// OIDCIdentityClient reads the userinfo endpoint of the SSO provider. Calls
// go through a circuit breaker so a provider outage fails sign-ins fast
// instead of piling up requests.
type OIDCIdentityClient struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	breaker     *gobreaker.CircuitBreaker
}

func NewOIDCIdentityClient(oauthConfig *oauth2.Config, userInfoURL string) *OIDCIdentityClient {
	settings := gobreaker.Settings{
		Name:        "sso-userinfo",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &OIDCIdentityClient{
		oauthConfig: oauthConfig,
		userInfoURL: userInfoURL,
		breaker:     gobreaker.NewCircuitBreaker(settings),
	}
}

func (c *OIDCIdentityClient) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Identity), nil
}

func (c *OIDCIdentityClient) fetch(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	client := c.oauthConfig.Client(ctx, token)
	client.Timeout = 10 * time.Second

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read user info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &identity, nil
}
