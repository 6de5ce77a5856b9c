package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPProvider implements Provider against the product service's HTTP API.
type HTTPProvider struct {
	httpClient HTTPDoer
	baseURL    string
	logger     *slog.Logger
}

// NewHTTPProvider creates a catalog provider that loads products and
// collections from the product service at baseURL.
func NewHTTPProvider(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *HTTPProvider {
	return &HTTPProvider{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// LoadProducts fetches the full product list from the product service.
func (p *HTTPProvider) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	var out struct {
		Data []domain.Product `json:"data"`
	}
	if err := p.getJSON(ctx, "/api/v1/products", &out); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	p.logger.InfoContext(ctx, "catalog products loaded",
		slog.Int("count", len(out.Data)),
	)

	return out.Data, nil
}

// LoadCollections fetches the full collection list from the product service.
func (p *HTTPProvider) LoadCollections(ctx context.Context) ([]domain.Collection, error) {
	var out struct {
		Data []domain.Collection `json:"data"`
	}
	if err := p.getJSON(ctx, "/api/v1/collections", &out); err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}

	p.logger.InfoContext(ctx, "catalog collections loaded",
		slog.Int("count", len(out.Data)),
	)

	return out.Data, nil
}

// getJSON executes a GET against the product service and decodes the response
// envelope into target.
func (p *HTTPProvider) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, "catalog")
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}

	return nil
}
