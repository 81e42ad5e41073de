// Package classify derives presentation flags, a category, and a
// distribution likelihood score for each film record. Every rule is a pure
// function of record fields so classification can run any number of times
// with the same outcome.
package classify
