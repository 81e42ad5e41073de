// Package lineup extracts film records and showtimes from a festival
// lineup page, with backup snapshot URLs as a fallback source.
package lineup
