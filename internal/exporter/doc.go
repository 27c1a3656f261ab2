// Package exporter renders dashboard chart tables as downloadable files.
//
// Tables are the common intermediate form: every chart payload from the
// analytics package converts into a Table (name, headers, string rows),
// which the CSV writer streams with a UTF-8 BOM for Excel compatibility
// and the workbook builder lays out as one xlsx sheet per chart.
package exporter
