// Package pipeline implements the in-memory derivation pipeline that turns
// raw monthly trip rows into the sampled, enriched table the dashboard
// queries: Clean -> Enrich -> Sample.
//
// Every stage is a pure function from table to table; no stage mutates its
// input. Stage outputs are wrapper types (CleanedTrips, EnrichedTrips,
// SampledTrips) that only this package can construct, so a stage cannot be
// re-run on its own output by mistake - the type system replaces the
// column-presence guards a dataframe implementation would need.
package pipeline
