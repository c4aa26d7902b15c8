package wompi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

var (
	ErrTransactionNotFound = errors.New("wompi: transaction not found")
	errRetryable           = errors.New("wompi: retryable response")
)

type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	executor failsafe.Executor[*Transaction]
}

func NewClient(apiKey, baseURL string) *Client {
	retry := retrypolicy.NewBuilder[*Transaction]().
		HandleIf(func(_ *Transaction, err error) bool {
			return errors.Is(err, errRetryable)
		}).
		WithBackoff(200*time.Millisecond, 2*time.Second).
		WithMaxRetries(3).
		WithJitterFactor(0.1).
		ReturnLastFailure().
		Build()

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 10 * time.Second},
		executor: failsafe.With[*Transaction](retry),
	}
}

// GetTransaction fetches a transaction by gateway id. Network errors and 5xx
// responses are retried; 404 maps to ErrTransactionNotFound.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, ErrTransactionNotFound
	}
	endpoint := fmt.Sprintf("%s/transactions/%s", c.baseURL, url.PathEscape(transactionID))

	return c.executor.WithContext(ctx).Get(func() (*Transaction, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %v", errRetryable, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrTransactionNotFound
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			body, _ := io.ReadAll(resp.Body)
			var apiErr errorResponse
			if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Type != "" {
				return nil, fmt.Errorf("wompi: %s (status %d)", apiErr.Error.Type, resp.StatusCode)
			}
			return nil, fmt.Errorf("wompi: unexpected status %d", resp.StatusCode)
		}

		var out transactionResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("wompi: decode transaction: %w", err)
		}
		return &out.Data, nil
	})
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
