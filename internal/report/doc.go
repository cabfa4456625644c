// Package report persists and renders benchmark results: CSV rows for analysis,
// tab-aligned tables for the console and a JSON document for archiving a whole run.
package report
