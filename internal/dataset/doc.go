// Package dataset reads the monthly trip Parquet file and the zone lookup
// CSV from disk, and knows how to fetch both from the TLC public bucket
// when they are missing. It produces raw rows only; cleaning and
// enrichment live in the pipeline package.
package dataset
