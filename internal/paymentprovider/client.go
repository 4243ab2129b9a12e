// Package paymentprovider содержит HTTP-клиент платёжного шлюза.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
}

// NewClient создаёт клиент платёжного шлюза.
func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		apiURL:     apiURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateIntent создаёт платёжное намерение. Idempotence-Key защищает от
// дублей при повторе запроса.
func (c *Client) CreateIntent(ctx context.Context, reqParams CreateIntentRequest) (*Intent, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/intents", reqParams)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Idempotence-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// RetrieveIntent возвращает текущее состояние платёжного намерения.
func (c *Client) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/intents/"+intentID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
