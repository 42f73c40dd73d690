// Package client holds the HTTP clients the gateway uses to read the user
// and company services. Both speak the services' envelope format and treat
// any non-2xx answer as an error for the caller to degrade on.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// envelope mirrors the response wrapper the services emit
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string, timeout time.Duration) httpClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// getJSON performs a GET and decodes the envelope's data field into out
func (c httpClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response from %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		code := "UNKNOWN"
		message := resp.Status
		if env.Error != nil {
			code = env.Error.Code
			message = env.Error.Message
		}
		return fmt.Errorf("%s answered %d (%s: %s)", path, resp.StatusCode, code, message)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data from %s: %w", path, err)
	}
	return nil
}
