package iiasa

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
)

// HTTPClient is the interface for HTTP client.
type HTTPClient interface {
	// Get sends a GET request. A non-empty token is sent as a bearer token.
	Get(ctx context.Context, u *url.URL, token string) (*http.Response, error)
	// Post sends a POST request with a JSON body. A non-empty token is sent as a bearer token.
	Post(ctx context.Context, u *url.URL, token string, body []byte) (*http.Response, error)
}

type httpClient struct {
	client *http.Client
}

// NewHTTPClient creates a new internal HTTP client.
//
// Each client owns its transport so that closing a connection releases its
// idle sockets without touching other connections.
func NewHTTPClient() HTTPClient {
	return &httpClient{
		client: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
	}
}

// Ensure httpClient implements HTTPClient.
var _ HTTPClient = (*httpClient)(nil)

func (c *httpClient) Get(ctx context.Context, u *url.URL, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	setAuthorization(req, token)
	return c.client.Do(req)
}

func (c *httpClient) Post(ctx context.Context, u *url.URL, token string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	setAuthorization(req, token)
	return c.client.Do(req)
}

// CloseIdleConnections closes the idle sockets of the underlying transport.
func (c *httpClient) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}

func setAuthorization(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
