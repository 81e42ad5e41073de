// Package webcache fetches pages over HTTP with retries, pacing, and
// identity rotation, persisting every successful response to a file cache
// so repeat runs avoid re-downloading unchanged pages.
package webcache
