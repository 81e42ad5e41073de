// Package imdb enriches film records with reference-database metadata:
// title IDs resolved by fuzzy search, company credits split into production
// and distribution, theatrical release dates, festival-debut detection, and
// country/runtime backfill.
package imdb
