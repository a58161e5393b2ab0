package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"crm/internal/util"
)

// Client talks to the HTTP WhatsApp gateway: GET {BaseURL}/send?api_key=&phone=&text=.
type Client struct {
	BaseURL     string
	APIKey      string
	HTTP        *http.Client
	CountryCode string
	Template    Template
}

type SendResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error,omitempty"`
	ID     string `json:"id,omitempty"`
}

// GatewayError is returned for every failed send. Message carries the
// provider's error text when there was one.
type GatewayError struct {
	Message    string
	HTTPStatus int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("gateway: %s (http %d)", e.Message, e.HTTPStatus)
	}
	return "gateway: " + e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Ready reports whether the client has what it needs to reach the gateway.
func (c *Client) Ready() bool {
	return strings.TrimSpace(c.BaseURL) != "" && c.APIKey != ""
}

// Send renders message into the template and delivers it to destination.
// Unformattable destinations fail before any network call. There is no retry.
func (c *Client) Send(ctx context.Context, destination, message string) (SendResponse, error) {
	phone, err := util.NormalizeDestination(destination, c.countryCode())
	if err != nil {
		return SendResponse{}, &GatewayError{Message: err.Error(), Err: err}
	}

	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("phone", phone)
	q.Set("text", c.Template.Render(message))
	endpoint := strings.TrimRight(c.BaseURL, "/") + "/send?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SendResponse{}, &GatewayError{Message: "build request", Err: err}
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return SendResponse{}, &GatewayError{Message: "transport failure", Err: err}
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out SendResponse
	if err := json.Unmarshal(b, &out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return out, &GatewayError{Message: "gateway send failed", HTTPStatus: resp.StatusCode}
		}
		return out, &GatewayError{Message: "malformed response", HTTPStatus: resp.StatusCode, Err: err}
	}
	if !out.Status {
		msg := out.Error
		if msg == "" {
			msg = "gateway send failed"
		}
		return out, &GatewayError{Message: msg, HTTPStatus: resp.StatusCode}
	}
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) countryCode() string {
	if c.CountryCode == "" {
		return "91"
	}
	return c.CountryCode
}

// IsInvalidDestination reports whether err came from destination normalization.
func IsInvalidDestination(err error) bool {
	return errors.Is(err, util.ErrInvalidDestination)
}
