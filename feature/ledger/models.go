package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction sides recorded in history entries.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// HistoryEntry is one immutable record in an asset's transaction history.
// The JSON field names are part of the persisted schema and must not change.
type HistoryEntry struct {
	// Asset is the tracked asset symbol (e.g. BTC).
	Asset string `json:"crypto"`

	// Side is BUY or SELL.
	Side string `json:"buyOrSell"`

	// Available is the quantity held after this transaction.
	Available string `json:"available"`

	// Delta is the signed quantity bought (positive) or sold (negative).
	Delta string `json:"amountBoughtOrSold"`

	// Price is the unit price at transaction time. Resolved on buys and
	// carried forward unchanged on sells.
	Price string `json:"price"`

	// Average is the running average unit price. Its computation is not
	// implemented yet; the field is carried so the schema stays stable.
	Average string `json:"average"`

	// Amount is Delta times Price, signed.
	Amount string `json:"amountPaid"`

	// Total is the cumulative amount invested after this transaction.
	Total string `json:"totalAmount"`

	// ProfitOrLoss is the realized result of a sell. Currently always empty.
	ProfitOrLoss string `json:"profitOrLoss"`

	// Timestamp is the transaction time in RFC 3339 format.
	Timestamp string `json:"dateTime"`
}

// History is the ordered, append-only entry list. The top-level History key
// matches the stored blob layout.
type History struct {
	Entries []HistoryEntry `json:"History"`
}

// Append adds an entry to the end of the history.
func (h *History) Append(entry HistoryEntry) {
	h.Entries = append(h.Entries, entry)
}

// Last returns the most recent entry, or nil for an empty history.
func (h *History) Last() *HistoryEntry {
	if len(h.Entries) == 0 {
		return nil
	}
	return &h.Entries[len(h.Entries)-1]
}

// Ledger is the tracked state of a single asset.
type Ledger struct {
	// Asset is the asset symbol, the unit of persistence.
	Asset string

	// Available is the current quantity, a denormalized copy of the last
	// history entry's Available field.
	Available decimal.Decimal

	// Average is the current average unit price, denormalized.
	Average decimal.Decimal

	// History is the full audit trail, oldest first.
	History History
}

// CorruptHistoryError reports a stored history blob that fails to decode.
// It is a data integrity failure and must never be retried.
type CorruptHistoryError struct {
	Asset string
	Err   error
}

func (e *CorruptHistoryError) Error() string {
	return fmt.Sprintf("ledger: corrupt history blob for asset %s: %v", e.Asset, e.Err)
}

func (e *CorruptHistoryError) Unwrap() error {
	return e.Err
}

// EncodeHistory serializes a history to the stored blob format.
func EncodeHistory(h *History) (string, error) {
	blob, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	return string(blob), nil
}

// DecodeHistory parses a stored history blob in a single typed pass.
func DecodeHistory(asset, blob string) (*History, error) {
	var h History
	if err := json.Unmarshal([]byte(blob), &h); err != nil {
		return nil, &CorruptHistoryError{Asset: asset, Err: err}
	}
	return &h, nil
}

// ParseQuantity parses a decimal quantity string as stored by the exchange
// and the ledger.
func ParseQuantity(asset, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse quantity %q for asset %s: %w", value, asset, err)
	}
	return d, nil
}
