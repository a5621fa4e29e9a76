package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// API is the surface the reconciliation engine consumes.
type API interface {
	// FetchHoldings returns every spot-account balance.
	FetchHoldings(ctx context.Context) ([]Holding, error)

	// FetchPrice resolves the current unit price of an asset against the
	// configured settlement currency.
	FetchPrice(ctx context.Context, asset string) (decimal.Decimal, error)
}

// Client is the REST implementation of API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates an exchange client from the configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

const (
	accountsPath = "/api/v1/accounts"
	tickerPath   = "/api/v1/market/orderbook/level1"
)

// FetchHoldings calls the signed accounts endpoint and returns the balances.
func (c *Client) FetchHoldings(ctx context.Context) ([]Holding, error) {
	var holdings []Holding
	if err := c.get(ctx, accountsPath, "", true, &holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

// FetchPrice queries the public level-1 ticker for {asset}-{settlement}.
func (c *Client) FetchPrice(ctx context.Context, asset string) (decimal.Decimal, error) {
	query := "symbol=" + asset + "-" + c.cfg.SettlementCurrency

	var ticker tickerData
	if err := c.get(ctx, tickerPath, query, false, &ticker); err != nil {
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchange: unparseable price %q for %s: %w", ticker.Price, asset, err)
	}
	return price, nil
}

// get performs a GET request with bounded retries of transient failures.
// Explicit API rejections and decode failures are returned immediately.
func (c *Client) get(ctx context.Context, path, query string, signed bool, out any) error {
	backoff := 250 * time.Millisecond

	for attempt := 0; ; attempt++ {
		err := c.getOnce(ctx, path, query, signed, out)

		var transient *TransientError
		if err == nil || !errors.As(err, &transient) || attempt >= c.cfg.MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (c *Client) getOnce(ctx context.Context, path, query string, signed bool, out any) error {
	endpoint := path
	if query != "" {
		endpoint = path + "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("exchange: build request %s: %w", endpoint, err)
	}
	if signed {
		c.sign(req, http.MethodGet, endpoint)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransientError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransientError{Endpoint: path, Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return &TransientError{Endpoint: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("exchange: decode %s response: %w", path, err)
	}
	if env.Code != successCode {
		return &APIError{Endpoint: path, Code: env.Code, Message: env.Message}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("exchange: decode %s payload: %w", path, err)
	}
	return nil
}

// sign applies the v2 request signature headers.
func (c *Client) sign(req *http.Request, method, endpoint string) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	payload := timestamp + method + endpoint

	req.Header.Set("KC-API-KEY", c.cfg.ApiKey)
	req.Header.Set("KC-API-SIGN", hmacBase64(c.cfg.ApiSecret, payload))
	req.Header.Set("KC-API-TIMESTAMP", timestamp)
	req.Header.Set("KC-API-PASSPHRASE", hmacBase64(c.cfg.ApiSecret, c.cfg.ApiPassphrase))
	req.Header.Set("KC-API-KEY-VERSION", "2")
}

func hmacBase64(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
