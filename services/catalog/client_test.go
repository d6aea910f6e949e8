package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "halo", r.URL.Query().Get("search"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{
					"id": 99,
					"name": "Halo Infinite",
					"background_image": "https://img.example/halo.jpg",
					"released": "2021-12-08",
					"rating": 4.1,
					"genres": [{"name": "Shooter"}],
					"platforms": [{"platform": {"name": "Xbox"}}, {"platform": {"name": "PC"}}]
				}
			]
		}`))
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, APIKey: "test-key", HTTPClient: server.Client()}
	games, err := client.Search(context.Background(), "halo")
	require.NoError(t, err)
	require.Len(t, games, 1)

	assert.Equal(t, int64(99), games[0].CatalogID)
	assert.Equal(t, "Halo Infinite", games[0].Name)
	assert.Equal(t, []string{"Shooter"}, games[0].Genres)
	assert.Equal(t, []string{"Xbox", "PC"}, games[0].Platforms)
}

func TestSearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := &Client{BaseURL: server.URL, HTTPClient: server.Client()}
	_, err := client.Search(context.Background(), "halo")
	assert.Error(t, err)
}

func TestSearchUnconfigured(t *testing.T) {
	client := &Client{}
	_, err := client.Search(context.Background(), "halo")
	assert.Error(t, err)
}
