package tracker

// Config holds configuration for the reconciliation engine.
type Config struct {
	// StableAsset is the settlement currency symbol that is never tracked.
	StableAsset string `mapstructure:"stable_asset" default:"USDT"`
	// BatchMode fetches all ledgers once per cycle and diffs them against the
	// live holdings instead of doing per-asset point lookups.
	BatchMode bool `mapstructure:"batch_mode" default:"false"`
	// KeepGoing isolates per-asset failures: the cycle continues and the
	// report collects the errors. When false the first failure aborts the
	// whole cycle.
	KeepGoing bool `mapstructure:"keep_going" default:"false"`
	// IntervalSeconds runs a cycle on a timer when serving. Zero disables the
	// scheduler; cycles then only run via the HTTP trigger or the CLI.
	IntervalSeconds int `mapstructure:"interval_seconds" default:"0"`
}
