package paradex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alanyoungcy/crossfeed/internal/domain"
)

// MarketsClient is the REST client for the Paradex public API, used at
// startup to confirm a market exists before any feed connects.
type MarketsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMarketsClient creates a markets client. baseURL is the API root, e.g.
// "https://api.prod.paradex.trade/v1".
func NewMarketsClient(baseURL string) *MarketsClient {
	return &MarketsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateSymbol checks that the market is listed on the venue. It returns
// domain.ErrUnknownSymbol (wrapped with a hint listing a few known markets)
// when the market is not found.
func (c *MarketsClient) ValidateSymbol(ctx context.Context, symbol string) error {
	known, err := c.markets(ctx)
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
	return fmt.Errorf("paradex: market %q: %w (known markets include: %s)",
		symbol, domain.ErrUnknownSymbol, strings.Join(hint, ", "))
}

// markets fetches the list of market symbols.
func (c *MarketsClient) markets(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/markets", nil)
	if err != nil {
		return nil, fmt.Errorf("paradex: create markets request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paradex: markets request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paradex: read markets response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paradex: markets request failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Results []struct {
			Symbol string `json:"symbol"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("paradex: decode markets response: %w", err)
	}

	names := make([]string, 0, len(payload.Results))
	for _, m := range payload.Results {
		names = append(names, m.Symbol)
	}
	return names, nil
}
