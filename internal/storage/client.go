package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("object storage endpoint not configured")

// Client uploads photo assets to the hosted object-storage service and
// returns their public URL. Upload failures are surfaced to callers as
// fallible and independent of registration persistence.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// Random object key, the original filename only survives as the
	// extension hint.
	part, err := writer.CreateFormFile("file", uuid.NewString()+"-"+name)
	if err != nil {
		return "", fmt.Errorf("writer.CreateFormFile -> %w", err)
	}
	if _, err = part.Write(data); err != nil {
		return "", fmt.Errorf("part.Write -> %w", err)
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("writer.Close -> %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("c.http.Do -> %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, payload)
	}

	var parsed uploadResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("json.Decode -> %w", err)
	}
	if parsed.URL == "" {
		return "", errors.New("upload response missing url")
	}

	return parsed.URL, nil
}
