package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

/**
 * Client for the external game catalog (RAWG-style API). The rest of the
 * application only consumes the returned Game shape; any failure here is
 * converted by the controller into a user-visible "search unavailable"
 * message, never surfaced raw.
 */

// Game is one catalog search hit.
type Game struct {
	CatalogID int64    `json:"catalog_id"`
	Name      string   `json:"name"`
	CoverURL  string   `json:"cover_url"`
	Genres    []string `json:"genres"`
	Platforms []string `json:"platforms"`
	Released  string   `json:"released"`
	Rating    float64  `json:"rating"`
}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewFromEnv builds a client from CATALOG_API_URL / CATALOG_API_KEY.
func NewFromEnv() *Client {
	return &Client{
		BaseURL: os.Getenv("CATALOG_API_URL"),
		APIKey:  os.Getenv("CATALOG_API_KEY"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Wire shapes of the upstream API.
type searchResponse struct {
	Results []struct {
		ID              int64  `json:"id"`
		Name            string `json:"name"`
		BackgroundImage string `json:"background_image"`
		Released        string `json:"released"`
		Rating          float64 `json:"rating"`
		Genres          []struct {
			Name string `json:"name"`
		} `json:"genres"`
		Platforms []struct {
			Platform struct {
				Name string `json:"name"`
			} `json:"platform"`
		} `json:"platforms"`
	} `json:"results"`
}

// Search runs a free-text query against the catalog and returns the ranked
// hits.
func (c *Client) Search(ctx context.Context, query string) ([]Game, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("catalog search is not configured")
	}

	endpoint := fmt.Sprintf("%s/games?search=%s&key=%s&page_size=20",
		c.BaseURL, url.QueryEscape(query), url.QueryEscape(c.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog answered %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("error decoding catalog response: %v", err)
	}

	games := make([]Game, 0, len(payload.Results))
	for _, r := range payload.Results {
		game := Game{
			CatalogID: r.ID,
			Name:      r.Name,
			CoverURL:  r.BackgroundImage,
			Released:  r.Released,
			Rating:    r.Rating,
		}
		for _, g := range r.Genres {
			game.Genres = append(game.Genres, g.Name)
		}
		for _, p := range r.Platforms {
			game.Platforms = append(game.Platforms, p.Platform.Name)
		}
		games = append(games, game)
	}
	return games, nil
}
