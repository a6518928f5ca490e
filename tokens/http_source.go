package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/daccred/txlens.attest.so/models"
)

// HTTPSource fetches token metadata from a metadata API:
// GET {base}/api/v1/token/{contract}?network={network}.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSource) FetchToken(ctx context.Context, contractID, network string) (models.TokenMetadata, error) {
	endpoint := fmt.Sprintf("%s/api/v1/token/%s?network=%s",
		s.baseURL, url.PathEscape(contractID), url.QueryEscape(network))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.TokenMetadata{}, fmt.Errorf("failed to build token request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return models.TokenMetadata{}, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.TokenMetadata{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.TokenMetadata{}, fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var meta models.TokenMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return models.TokenMetadata{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	return meta, nil
}
