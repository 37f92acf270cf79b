package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/show/show-1":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"title": "Some Show",
				"poster_url": "https://cdn.example.com/poster.jpg",
				"episodes": [{"id": "ep-1", "title": "Pilot", "season": 1, "number": 1}]
			}`))
		case "/api/v1/show/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	ctx := context.Background()

	content, err := client.Get(ctx, "show", "show-1")
	require.NoError(t, err)
	assert.Equal(t, "Some Show", content.Title)
	assert.Equal(t, "https://cdn.example.com/poster.jpg", content.PosterUrl)
	require.Len(t, content.Episodes, 1)
	assert.Equal(t, "ep-1", content.Episodes[0].Id)
	assert.Equal(t, 1, content.Episodes[0].Season)

	_, err = client.Get(ctx, "show", "unknown")
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = client.Get(ctx, "show", "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrContentNotFound)
}
