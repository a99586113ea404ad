package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/pkg/logger"
	"github.com/sethvargo/go-retry"
)

// Valores por defecto del coordinador de reintentos.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 100 * time.Millisecond
)

// RetryCoordinator envuelve una operación mutadora y la reintenta ante
// conflictos de concurrencia (conflicto de versión o timeout de bloqueo) con
// backoff creciente. La operación completa (leer-validar-mutar-escribir) se
// re-ejecuta contra datos frescos: nunca se reintenta con estado en memoria.
// Los fallos de regla de negocio no se reintentan y se propagan de inmediato.
type RetryCoordinator struct {
	maxAttempts int
	backoffBase time.Duration
	log         *logger.Logger
}

// NewRetryCoordinator construye el coordinador. maxAttempts <= 0 o
// backoffBase <= 0 toman los valores por defecto.
func NewRetryCoordinator(maxAttempts int, backoffBase time.Duration, log *logger.Logger) *RetryCoordinator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}
	return &RetryCoordinator{maxAttempts: maxAttempts, backoffBase: backoffBase, log: log}
}

// linearBackoff espera backoffBase * número de intento (100ms, 200ms, ...).
func linearBackoff(base time.Duration) retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * base, false
	})
}

// Do ejecuta op hasta maxAttempts veces. Solo los errores de concurrencia
// marcan reintento; agotados los intentos, devuelve ConcurrencyExhaustedError.
func (c *RetryCoordinator) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := 0
	b := retry.WithMaxRetries(uint64(c.maxAttempts-1), linearBackoff(c.backoffBase))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		err := op(ctx)
		if isConcurrencyError(err) {
			c.log.Warn().
				Err(err).
				Int("attempt", attempts).
				Int("max_attempts", c.maxAttempts).
				Msg("conflicto de concurrencia, reintentando operación de stock")
			return retry.RetryableError(err)
		}
		return err
	})

	if isConcurrencyError(err) {
		return &domain.ConcurrencyExhaustedError{Attempts: attempts, Err: err}
	}
	return err
}

// isConcurrencyError distingue los fallos transitorios que habilitan reintento.
func isConcurrencyError(err error) bool {
	return errors.Is(err, domain.ErrVersionConflict) || errors.Is(err, domain.ErrLockTimeout)
}
