// Package config loads, normalizes, and validates marquee's TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/marquee, or a
// project-local marquee.toml), applies defaults for unset keys, expands
// ~ in path fields, and validates the result. A missing config file is
// not an error; the defaults describe a usable setup.
package config
