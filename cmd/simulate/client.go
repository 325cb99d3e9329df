package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// apiClient speaks to a running api-server as one logged-in staff member.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

type idOnly struct {
	ID uuid.UUID `json:"id"`
}

func (c *apiClient) login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	status, err := c.call(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login returned %d", status)
	}
	c.token = resp.Token
	return nil
}

func (c *apiClient) listIDs(ctx context.Context, path string) ([]uuid.UUID, error) {
	var items []idOnly
	status, err := c.call(ctx, http.MethodGet, path, nil, &items)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned %d", path, status)
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids, nil
}

// call sends body as JSON and decodes a 2xx response into out when set.
func (c *apiClient) call(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
		return resp.StatusCode, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
