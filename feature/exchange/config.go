package exchange

// Config holds configuration for the exchange API client.
type Config struct {
	// BaseURL is the REST endpoint of the exchange.
	BaseURL string `mapstructure:"base_url" default:"https://api.kucoin.com"`
	// ApiKey is the API key issued by the exchange.
	ApiKey string `mapstructure:"api_key" default:""`
	// ApiSecret is the secret used to sign requests.
	ApiSecret string `mapstructure:"api_secret" default:""`
	// ApiPassphrase is the key passphrase chosen at key creation.
	ApiPassphrase string `mapstructure:"api_passphrase" default:""`
	// SettlementCurrency is the quote side of price lookups (e.g. BTC-USDT).
	SettlementCurrency string `mapstructure:"settlement_currency" default:"USDT"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// MaxRetries bounds retries of transient transport failures.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
}
