// Package http contains the HTTP transport layer of the taxi dashboard.
//
// Handlers are thin: they parse and validate the request, delegate to
// the services layer, and render the result with go-chi/render. Errors
// flow through the shared RFC 7807 error handler so every failure is a
// problem+json response with a trace id.
//
// The dashboard routes share one query-string filter contract
// (start_date, end_date, start_hour, end_hour, payments); parameters
// left out fall back to the full range the loaded sample covers.
package http
