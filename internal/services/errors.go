package services

import "errors"

// Dashboard service errors
var (
	// Dataset errors
	ErrDatasetNotReady = errors.New("dataset still loading")
	ErrDatasetFailed   = errors.New("dataset warmup failed")

	// Chart errors
	ErrChartNotFound = errors.New("chart not found")
	ErrNoChartData   = errors.New("no chart data available")

	// WebSocket errors
	ErrWebSocketUpgrade = errors.New("websocket upgrade failed")
	ErrWebSocketClosed  = errors.New("websocket connection closed")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrOperationTimeout   = errors.New("operation timed out")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
