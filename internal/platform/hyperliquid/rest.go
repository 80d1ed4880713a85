package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

// InfoClient is the REST client for the Hyperliquid info endpoint, used at
// startup to confirm a symbol exists before any feed connects.
type InfoClient struct {
	infoURL    string
	httpClient *http.Client
}

// NewInfoClient creates an info client. infoURL is the full endpoint, e.g.
// "https://api.hyperliquid.xyz/info".
func NewInfoClient(infoURL string) *InfoClient {
	return &InfoClient{
		infoURL: infoURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateSymbol checks that the coin is listed in the venue's perp universe.
// It returns domain.ErrUnknownSymbol (wrapped with a hint listing a few known
// symbols) when the coin is not found.
func (c *InfoClient) ValidateSymbol(ctx context.Context, symbol string) error {
	known, err := c.universe(ctx)
	if err != nil {
		return err
	}
	for _, name := range known {
		if strings.EqualFold(name, symbol) {
			return nil
		}
	}
	hint := known
	if len(hint) > 10 {
		hint = hint[:10]
	}
	return fmt.Errorf("hyperliquid: symbol %q: %w (known symbols include: %s)",
		symbol, domain.ErrUnknownSymbol, strings.Join(hint, ", "))
}

// universe fetches the list of perp asset names from the meta endpoint.
func (c *InfoClient) universe(ctx context.Context) ([]string, error) {
	reqBody := []byte(`{"type":"meta"}`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.infoURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: create meta request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: meta request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: read meta response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hyperliquid: meta request failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var meta struct {
		Universe []struct {
			Name string `json:"name"`
		} `json:"universe"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode meta response: %w", err)
	}

	names := make([]string, 0, len(meta.Universe))
	for _, asset := range meta.Universe {
		names = append(names, asset.Name)
	}
	return names, nil
}
