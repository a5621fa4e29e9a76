// Package exchange implements the KuCoin-style REST client that supplies the
// two external inputs of a reconciliation cycle: the live spot-account
// holdings and the current unit price of an asset.
//
// # Endpoints
//
//   - FetchHoldings: signed GET /api/v1/accounts
//   - FetchPrice: public GET /api/v1/market/orderbook/level1?symbol={asset}-{settlement}
//
// Private requests are signed with the v2 scheme: base64 HMAC-SHA256 of
// timestamp+method+path+body under the API secret, with the passphrase
// itself HMAC-signed.
//
// # Error classification
//
// Two failure classes cross the package boundary:
//
//   - *APIError: the exchange answered with an explicit error payload. This
//     signals a logical or auth problem and is never retried.
//   - *TransientError: a transport failure or 5xx response. The client
//     retries these with exponential backoff up to Config.MaxRetries before
//     giving up and returning the wrapped error.
package exchange
