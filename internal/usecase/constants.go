package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultListLimit and MaxListLimit bound list queries.
	DefaultListLimit = 20
	MaxListLimit     = 100

	// ClosingModuleSource tags entries raised by the period close.
	ClosingModuleSource = "gl.closing"
)
