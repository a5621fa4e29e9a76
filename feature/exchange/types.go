package exchange

import (
	"encoding/json"
	"fmt"
)

// Holding is one spot-account balance reported by the exchange. It is
// re-fetched every cycle and never persisted.
type Holding struct {
	// ID is the exchange-side account id.
	ID string `json:"id"`

	// Asset is the asset symbol (e.g. BTC).
	Asset string `json:"currency"`

	// Type is the account type: main, trade, margin or pool.
	Type string `json:"type"`

	// Balance is the total quantity in the account.
	Balance string `json:"balance"`

	// Available is the quantity free to trade or withdraw.
	Available string `json:"available"`

	// Holds is the quantity locked in open orders.
	Holds string `json:"holds"`
}

// successCode is the envelope code of a successful exchange response.
const successCode = "200000"

// envelope is the common response wrapper of the exchange API.
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// tickerData is the level-1 ticker payload; only the last trade price is
// consumed.
type tickerData struct {
	Price string `json:"price"`
}

// APIError is an explicit failure payload returned by the exchange. It is
// surfaced immediately and never retried.
type APIError struct {
	Endpoint string
	Code     string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange: %s rejected: code=%s msg=%q", e.Endpoint, e.Code, e.Message)
}

// TransientError is a transport-level failure (connectivity, timeout, 5xx)
// that survived the client's bounded retries.
type TransientError struct {
	Endpoint string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("exchange: %s transport failure: %v", e.Endpoint, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
