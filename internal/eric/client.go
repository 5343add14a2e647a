package eric

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is the HTTP adapter to the ERiC bridge service.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a bridge client. timeout bounds the whole exchange.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit posts the document to the bridge and decodes the outcome.
func (c *Client) Submit(ctx context.Context, document string, useTestmerker bool) (*Ticket, error) {
	url := fmt.Sprintf("%s/v1/submit?testmerker=%t", c.endpoint, useTestmerker)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(document))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransmissionError{
			Code:    "transport",
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var bridgeErr TransmissionError
		if err := json.NewDecoder(resp.Body).Decode(&bridgeErr); err != nil || bridgeErr.Code == "" {
			return nil, &TransmissionError{
				Code:    "bridge",
				Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
			}
		}
		return nil, &bridgeErr
	}

	var ticket Ticket
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		return nil, &TransmissionError{
			Code:    "bridge",
			Message: fmt.Sprintf("decode response failed: %v", err),
		}
	}

	return &ticket, nil
}
