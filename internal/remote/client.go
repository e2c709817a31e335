// Package remote wraps the external catalog service's cart API. The
// server is authoritative: every mutating call returns the full
// updated cart, which callers use to replace their local cache.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/lunashop/cart-go/internal/auth"
	"github.com/lunashop/cart-go/internal/middleware"
)

// Client is the generic upstream HTTP client: base URL resolution,
// bearer credential, correlation id propagation, JSON codec.
type Client struct {
	BaseURL *url.URL
	HTTP    *http.Client
	Tokens  auth.TokenSource // fallback when the context carries no credential
}

func NewClient(baseURL string, httpClient *http.Client, tokens auth.TokenSource) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cart api base url %q: %w", baseURL, err)
	}
	return &Client{BaseURL: u, HTTP: httpClient, Tokens: tokens}, nil
}

// do issues one JSON request and decodes the response into out (out
// may be nil). Non-2xx responses and transport failures come back as
// *Error so call sites can surface the user-facing message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = buf
	}

	u := c.BaseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Message: GenericUserMessage, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) bearer(ctx context.Context) string {
	if token := auth.BearerFromContext(ctx); token != "" {
		return token
	}
	if c.Tokens == nil {
		return ""
	}
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return ""
	}
	return token
}

// decodeError pulls a user-facing message out of an error response.
// The cart API answers errors as {"error": "..."} or {"message": "..."}.
func decodeError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := GenericUserMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error != "" {
			msg = body.Error
		} else if body.Message != "" {
			msg = body.Message
		}
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
