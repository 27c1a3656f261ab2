// Package analytics implements the interactive query side of the dashboard:
// the filter stage that restricts the sampled trips to the current view and
// the aggregate queries behind each chart. Every function here is pure over
// its input rows and safe on an empty view - degenerate inputs produce empty
// results, never errors.
package analytics
