// Package storage provides the object storage client used to archive cycle
// reports.
//
// It wraps the Minio S3-compatible client behind a small interface so the
// report archiver can be tested against a mock (see the mocks subpackage).
// Archiving is optional; when disabled no client is constructed at all.
package storage
