// Package database provides SQLite-backed persistence for extracted
// event records and the query surface that the serving commands read
// from.
package database
