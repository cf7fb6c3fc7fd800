package client

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/atims0208/fieldhouse/internal/config"
)

// CDNClient provisions live video channels on the external CDN/ingest
// provider. When no provider is configured it falls back to locally
// generated ingest endpoints so the rest of the platform keeps working.
type CDNClient struct {
	baseURL    string
	apiToken   string
	ingestURL  string
	httpClient *http.Client
}

// Channel is an ingest channel provisioned for one stream.
type Channel struct {
	IngestURL   string `json:"ingest_url"`
	StreamKey   string `json:"stream_key"`
	PlaybackURL string `json:"playback_url"`
}

type provisionRequest struct {
	Name string `json:"name"`
}

type provisionResponse struct {
	Success bool     `json:"success"`
	Data    *Channel `json:"data"`
	Error   string   `json:"error,omitempty"`
}

// NewCDNClient creates a new CDN provisioning client.
func NewCDNClient(cfg config.CDNConfig) *CDNClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CDNClient{
		baseURL:   cfg.BaseURL,
		apiToken:  cfg.APIToken,
		ingestURL: cfg.IngestURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ProvisionChannel creates an ingest channel for a stream.
func (c *CDNClient) ProvisionChannel(ctx context.Context, streamID string) (*Channel, error) {
	if c.baseURL == "" {
		return c.localChannel(streamID)
	}

	body, err := json.Marshal(provisionRequest{Name: streamID})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/channels", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to provision channel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("cdn provider returned status: %d", resp.StatusCode)
	}

	var provResp provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&provResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !provResp.Success || provResp.Data == nil {
		return nil, fmt.Errorf("cdn provider error: %s", provResp.Error)
	}

	return provResp.Data, nil
}

// DeleteChannel tears down an ingest channel after the stream ends.
// Teardown failures are non-fatal; the provider reaps idle channels.
func (c *CDNClient) DeleteChannel(ctx context.Context, streamID string) error {
	if c.baseURL == "" {
		return nil
	}

	url := fmt.Sprintf("%s/api/v1/channels/%s", c.baseURL, streamID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("cdn provider returned status: %d", resp.StatusCode)
	}
	return nil
}

func (c *CDNClient) localChannel(streamID string) (*Channel, error) {
	key, err := generateStreamKey()
	if err != nil {
		return nil, err
	}
	return &Channel{
		IngestURL:   c.ingestURL,
		StreamKey:   key,
		PlaybackURL: fmt.Sprintf("%s/%s/index.m3u8", c.ingestURL, streamID),
	}, nil
}

func generateStreamKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
