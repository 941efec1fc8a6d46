// Package razorpay is a minimal client for the Razorpay Orders API.
package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"react2give/pkg/httpclient"
	"react2give/pkg/models"
)

type Client struct {
	http *httpclient.Client
}

func NewClient(baseURL, keyID, keySecret string, timeout time.Duration) *Client {
	return &Client{
		http: httpclient.NewClient(baseURL, timeout, httpclient.WithBasicAuth(keyID, keySecret)),
	}
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, params models.CreateOrderParams) (*models.OrderRecord, error) {
	var order models.OrderRecord
	if err := c.http.PostJSON(ctx, "/v1/orders", params, &order); err != nil {
		return nil, describe(err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay: order response without id")
	}
	return &order, nil
}

func describe(err error) error {
	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("razorpay: %w", err)
	}
	var ae apiError
	if json.Unmarshal([]byte(se.Body), &ae) == nil && ae.Error.Description != "" {
		return fmt.Errorf("razorpay: %s: %s (status %d)", ae.Error.Code, ae.Error.Description, se.StatusCode)
	}
	return fmt.Errorf("razorpay: %w", err)
}
