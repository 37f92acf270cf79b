// Package catalog resolves content references against the StreamVault
// content API. The sync server only needs existence checks and display
// metadata, the full catalog surface lives in the web application.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrContentNotFound = errors.New("content not found")

type ContentData struct {
	Title     string    `json:"title"`
	PosterUrl string    `json:"poster_url"`
	Episodes  []Episode `json:"episodes"`
}

type Episode struct {
	Id     string `json:"id"`
	Title  string `json:"title"`
	Season int    `json:"season"`
	Number int    `json:"number"`
}

type Client struct {
	baseUrl    string
	httpClient *http.Client
}

func NewClient(baseUrl string) *Client {
	return &Client{
		baseUrl: baseUrl,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Get fetches metadata for a content reference. Unknown ids map to
// ErrContentNotFound, everything else is a transport failure.
func (c Client) Get(ctx context.Context, contentType, contentId string) (*ContentData, error) {
	url := fmt.Sprintf("%s/api/v1/%s/%s", c.baseUrl, contentType, contentId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrContentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from content api", resp.StatusCode)
	}

	var contentData ContentData
	if err := json.NewDecoder(resp.Body).Decode(&contentData); err != nil {
		return nil, fmt.Errorf("failed to decode content data: %w", err)
	}

	return &contentData, nil
}
