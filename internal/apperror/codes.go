package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Price-discovery error codes
const (
	// Pool snapshot feed errors
	CodeFeedUnavailable    Code = "FEED_UNAVAILABLE"
	CodeFeedDecodeError    Code = "FEED_DECODE_ERROR"
	CodeFeedSubscribeError Code = "FEED_SUBSCRIBE_ERROR"
	CodeMalformedPoolData  Code = "MALFORMED_POOL_DATA"
	CodeStaleSnapshot      Code = "STALE_SNAPSHOT"
	CodeSnapshotNotLoaded  Code = "SNAPSHOT_NOT_LOADED"

	// Anchor oracle errors
	CodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"
	CodeOracleDecodeError Code = "ORACLE_DECODE_ERROR"
	CodeOracleStale       Code = "ORACLE_STALE"

	// Token registry errors
	CodeUnknownToken      Code = "UNKNOWN_TOKEN"
	CodeNoAnchorToken     Code = "NO_ANCHOR_TOKEN"
	CodeInvalidContractID Code = "INVALID_CONTRACT_ID"

	// Pricing outcomes
	CodeNoPathFound      Code = "NO_PATH_FOUND"
	CodeInsufficientData Code = "INSUFFICIENT_DATA"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// History store errors
	CodeHistoryStoreError Code = "HISTORY_STORE_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
