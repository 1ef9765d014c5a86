package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/thirdweb-example/community-rewards/internal/domain"
	"github.com/thirdweb-example/community-rewards/internal/infrastructure/session"
)

// APIClient talks to the rewards server the way the page's fetch calls do:
// session cookie in, opaque JSON out.
type APIClient struct {
	baseURL    string
	cookie     string
	httpClient *http.Client
}

// NewAPIClient creates a client for the given server base URL.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetSessionCookie attaches the session obtained from the browser sign-in.
func (c *APIClient) SetSessionCookie(value string) {
	c.cookie = value
}

func (c *APIClient) addSession(req *http.Request) {
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: c.cookie})
	}
}

// CheckMembership fetches the advisory eligibility display status.
func (c *APIClient) CheckMembership(ctx context.Context) (*domain.Membership, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/check-is-in-server", nil)
	if err != nil {
		return nil, err
	}
	c.addSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("membership check returned status %d", resp.StatusCode)
	}

	var body struct {
		Membership *domain.Membership `json:"thirdwebMembership"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Membership, nil
}

// RequestSignature asks the server for a mint authorization for the wallet.
func (c *APIClient) RequestSignature(ctx context.Context, claimerAddress string) (*domain.SignedPayload, error) {
	payload, err := json.Marshal(map[string]string{"claimerAddress": claimerAddress})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate-signature", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signature request returned status %d", resp.StatusCode)
	}

	var body struct {
		SignedPayload *domain.SignedPayload `json:"signedPayload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.SignedPayload == nil {
		return nil, fmt.Errorf("signature response missing signedPayload")
	}
	return body.SignedPayload, nil
}
