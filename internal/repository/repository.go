// Package repository persists catalog, order, review and user documents.
// The Mongo implementations back production; the in-memory ones back
// development runs without DB_URL and the test suites.
package repository

import "errors"

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
)
