// Package film defines the record types that flow through the scraping
// and enrichment pipeline.
//
// A Record starts life mostly empty after lineup extraction and gains
// fields as each enrichment stage runs. Optional fields use empty
// strings or nil pointers rather than sentinel values so each stage's
// read/write contract stays explicit.
package film
