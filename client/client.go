// Package client is a thin Go consumer of the Asikh OMS REST API. It mirrors
// the server's entity collections in local stores and applies the server's
// responses to them, the server staying the source of truth for validation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Entity is a server object as received. The id field is the only one the
// cache logic interprets.
type Entity map[string]interface{}

// ID returns the entity's numeric id, or 0 when absent.
func (e Entity) ID() int64 {
	switch v := e["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		id, _ := v.Int64()
		return id
	}
	return 0
}

// APIError carries the server's error envelope.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
}

const fallbackErrorMessage = "Request failed"

// parseErrorDetail reads the {"detail": ...} envelope. Detail may be a plain
// string or a validation array of {msg} objects.
func parseErrorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallbackErrorMessage
	}

	var msg string
	if err := json.Unmarshal(envelope.Detail, &msg); err == nil && msg != "" {
		return msg
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return fallbackErrorMessage
}

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload interface{}) ([]byte, error) {
	endpoint := c.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: parseErrorDetail(respBody)}
	}

	return respBody, nil
}

// DecodeList unwraps a list payload. The expected shape is the envelope
// {"<entityKey>": [...]}; a bare array is tolerated; anything else decodes to
// an empty collection with ok=false.
func DecodeList(body []byte, entityKey string) (items []Entity, ok bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if raw, found := envelope[entityKey]; found {
			if err := json.Unmarshal(raw, &items); err == nil {
				return items, true
			}
		}
		return []Entity{}, false
	}

	if err := json.Unmarshal(body, &items); err == nil {
		return items, true
	}

	return []Entity{}, false
}

// List fetches a collection. An unrecognized payload shape yields an empty
// slice, never an error, so a bad response cannot poison the cache.
func (c *Client) List(ctx context.Context, path, entityKey string, params url.Values) ([]Entity, error) {
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	items, _ := DecodeList(body, entityKey)
	return items, nil
}

func (c *Client) Get(ctx context.Context, path string) (Entity, error) {
	body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var entity Entity
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *Client) Create(ctx context.Context, path string, payload interface{}) (Entity, error) {
	body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}
	var entity Entity
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *Client) Update(ctx context.Context, path string, payload interface{}) (Entity, error) {
	body, err := c.do(ctx, http.MethodPut, path, nil, payload)
	if err != nil {
		return nil, err
	}
	var entity Entity
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Delete removes an entity and returns its id for the local filter-out.
func (c *Client) Delete(ctx context.Context, path string, id int64) (int64, error) {
	if _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", path, id), nil, nil); err != nil {
		return 0, err
	}
	return id, nil
}

// Login authenticates and stores the access token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (Entity, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var result Entity
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if token, ok := result["access_token"].(string); ok {
		c.Token = token
	}
	return result, nil
}
