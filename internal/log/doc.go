// Package log provides logging with automatic sanitization of sensitive
// information, built on top of the standard slog package.
//
// The SecureHandler masks credentials that may appear in crawl or
// enrichment logging: HTTP auth headers, cookies, API keys, and tokens.
// Even in verbose mode these values are replaced with a redaction mark,
// so logs can be shared when debugging a misbehaving source.
package log
