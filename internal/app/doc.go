// Package app wires the taxi dashboard together: configuration,
// logging, OpenTelemetry, the WebSocket hub, the dashboard and health
// services, and the chi router, plus the HTTP server lifecycle.
//
// Initialization order:
//
//	1. Load configuration from file and TAXI_* environment variables
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Start the WebSocket hub and build the dataset loader
//	4. Create the dashboard and health services
//	5. Assemble middleware and routes
//	6. Create the HTTP server
//
// The dataset warmup runs in the background after Start; dashboard
// endpoints answer 503 problem+json until it completes, and the hub
// broadcasts dataset:ready when it does.
//
// Shutdown handles SIGINT and SIGTERM: the HTTP server drains active
// requests, the hub closes its connections, and the OpenTelemetry
// providers flush before exit. Initialization errors are returned to
// the caller; the package never calls os.Exit itself.
package app
