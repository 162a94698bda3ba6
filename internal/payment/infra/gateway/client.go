// Package gateway talks to the crypto/fiat payment gateway's order API.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cristianortiz/numismaticMarket/internal/payment/domain"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	client *resty.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetAuthToken(apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{client: client}
}

type createOrderRequest struct {
	PartnerOrderID string `json:"partner_order_id"`
	UserID         string `json:"user_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Mode           string `json:"mode"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateOrder registers o with the gateway and returns the widget session.
func (c *Client) CreateOrder(ctx context.Context, o *domain.Order) (*domain.Session, error) {
	var (
		session domain.Session
		apiErr  errorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(createOrderRequest{
			PartnerOrderID: o.PartnerOrderID,
			UserID:         o.UserID.String(),
			Amount:         o.Amount.StringFixed(2),
			Currency:       o.Currency,
			Mode:           string(o.Mode),
		}).
		SetResult(&session).
		SetError(&apiErr).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("gateway: create order: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway: create order: status %d: %s", resp.StatusCode(), apiErr.Error)
	}
	if session.RedirectURL == "" && session.WidgetToken == "" {
		return nil, fmt.Errorf("gateway: create order: empty session")
	}
	return &session, nil
}
