package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"waste-whirl-api/config"

	"github.com/go-resty/resty/v2"
)

// IdentityService talks to the external identity provider (Clerk). It uses
// a single configured endpoint with client-side retry/backoff; role changes
// happen there first so the provider never lags behind the local database.
type IdentityService struct {
	client  *resty.Client
	baseURL string
}

func NewIdentityService(cfg config.IdentityConfig) *IdentityService {
	client := resty.New().
		SetAuthToken(cfg.SecretKey).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetTimeout(10 * time.Second)

	return &IdentityService{
		client:  client,
		baseURL: cfg.BaseURL,
	}
}

// UserExists checks whether the external id is known to the provider.
func (s *IdentityService) UserExists(ctx context.Context, clerkID string) (bool, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/v1/users/%s", s.baseURL, clerkID))
	if err != nil {
		return false, fmt.Errorf("identity lookup for %s: %w", clerkID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("identity lookup for %s: status %d", clerkID, resp.StatusCode())
	}
	return true, nil
}

// UpdateRole writes the role into the user's public metadata.
func (s *IdentityService) UpdateRole(ctx context.Context, clerkID, role string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"public_metadata": map[string]string{"role": role},
		}).
		Patch(fmt.Sprintf("%s/v1/users/%s", s.baseURL, clerkID))
	if err != nil {
		return fmt.Errorf("identity role update for %s: %w", clerkID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("identity role update for %s: status %d", clerkID, resp.StatusCode())
	}
	return nil
}
