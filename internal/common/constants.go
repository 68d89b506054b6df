package common

// Environment variable keys
const (
	EnvConfigFile     = "CONFIG_FILE"
	EnvHistoryDays    = "HISTORY_DAYS"
	EnvConfidenceZ    = "CONFIDENCE_Z"
	EnvWinRate        = "WIN_RATE"
	EnvKellyFraction  = "KELLY_FRACTION"
	EnvSafetyBuffer   = "SAFETY_BUFFER"
	EnvMinProfitShare = "MIN_PROFIT_SHARE"
	EnvMinOrderSize   = "MIN_ORDER_SIZE"
	EnvATRStopMult    = "ATR_STOP_MULT"
	EnvRESTTimeout    = "REST_TIMEOUT"
	EnvQuoteAsset     = "QUOTE_ASSET"
)

// Configuration defaults
const (
	DefaultHistoryDays    = 90
	DefaultConfidenceZ    = 2.0  // ~95% volatility cone
	DefaultWinRate        = 0.55 // grids win slightly more often than they lose
	DefaultKellyFraction  = 0.5  // half-Kelly
	DefaultSafetyBuffer   = 0.90 // liquidation floor 10% below the stop
	DefaultMinProfitShare = 0.8  // fees may eat at most 20% of a captured step
	DefaultMinOrderSize   = 6.0  // USD notional of the smallest grid order
	DefaultATRStopMult    = 1.5
	DefaultRESTTimeout    = "10s"
	DefaultQuoteAsset     = "USDT"
	DefaultExchange       = "binance"
	DefaultHorizonDays    = 7
)

// Exchange IDs with a first-party sniffer adapter
const (
	ExchangeBinance = "binance"
	ExchangeBybit   = "bybit"
	ExchangeOKX     = "okx"
)

// Validation limits
const (
	MinHistoryDays   = 15 // below this the 14-bar ATR loses meaning
	MaxHistoryDays   = 1000
	MinConfidenceZ   = 0.5
	MaxConfidenceZ   = 5.0
	MaxKellyFraction = 1.0
)
