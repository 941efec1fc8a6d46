// Package twilio sends SMS through the Twilio Messages API.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"react2give/pkg/httpclient"
	"react2give/pkg/models"
)

type Client struct {
	http       *httpclient.Client
	accountSID string
}

func NewClient(baseURL, accountSID, authToken string, timeout time.Duration) *Client {
	return &Client{
		http:       httpclient.NewClient(baseURL, timeout, httpclient.WithBasicAuth(accountSID, authToken)),
		accountSID: accountSID,
	}
}

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

func (c *Client) Send(ctx context.Context, body, to, from string) (*models.MessageReceipt, error) {
	form := url.Values{}
	form.Set("Body", body)
	form.Set("To", to)
	form.Set("From", from)

	var receipt models.MessageReceipt
	path := "/2010-04-01/Accounts/" + url.PathEscape(c.accountSID) + "/Messages.json"
	if err := c.http.PostForm(ctx, path, form, &receipt); err != nil {
		return nil, describe(err)
	}
	return &receipt, nil
}

func describe(err error) error {
	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("twilio: %w", err)
	}
	var ae apiError
	if json.Unmarshal([]byte(se.Body), &ae) == nil && ae.Message != "" {
		return fmt.Errorf("twilio: %d: %s (status %d)", ae.Code, ae.Message, se.StatusCode)
	}
	return fmt.Errorf("twilio: %w", err)
}
