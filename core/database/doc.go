// Package database manages the MySQL connection used by the ledger store.
//
// It wires GORM with sane pool settings and connection/I/O timeouts, and
// verifies the connection with a ping before handing it to callers. Schema
// management for the ledger table itself lives with the ledger feature.
package database
