// Package services implements the business logic layer between the HTTP
// handlers and the dataset/pipeline packages.
//
// DashboardService owns the warmed session state: it runs the
// load-clean-enrich-sample pipeline once, keeps the sampled trips and the
// zone index in memory, and answers every dashboard query by filtering
// and aggregating that retained sample. HealthService reports liveness
// and readiness; the service is ready only once warmup has succeeded.
//
// Services take their dependencies through constructors, propagate
// context for cancellation and tracing, and log with *slog.Logger.
package services
