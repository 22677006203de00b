package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Pool snapshot feed errors
	CodeFeedUnavailable:    "Pool snapshot feed is unavailable",
	CodeFeedDecodeError:    "Failed to decode pool snapshot payload",
	CodeFeedSubscribeError: "Failed to subscribe to pool snapshot stream",
	CodeMalformedPoolData:  "Malformed pool data in snapshot",
	CodeStaleSnapshot:      "Pool snapshot is older than the staleness threshold",
	CodeSnapshotNotLoaded:  "No pool snapshot loaded yet",

	// Anchor oracle errors
	CodeOracleUnavailable: "Anchor price oracle is unavailable",
	CodeOracleDecodeError: "Failed to decode oracle response",
	CodeOracleStale:       "Anchor oracle price is stale",

	// Token registry errors
	CodeUnknownToken:      "Token is not registered",
	CodeNoAnchorToken:     "No anchor token configured",
	CodeInvalidContractID: "Invalid Stacks contract identifier",

	// Pricing outcomes
	CodeNoPathFound:      "No conversion path to the anchor token",
	CodeInsufficientData: "Not enough surviving paths to price token",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// History store errors
	CodeHistoryStoreError: "Price history store operation failed",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
