package domain

import "errors"

// Виды ошибок ядра. Хендлеры сопоставляют их с HTTP-статусами
// через errors.Is, сервисы оборачивают через fmt.Errorf("...: %w", err).
var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrStorageBackend     = errors.New("storage backend error")
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrPartialFailure означает, что многошаговая операция могла
	// примениться частично; слепой повтор небезопасен.
	ErrPartialFailure = errors.New("partial failure")
)
