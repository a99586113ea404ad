package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

func newCoordinator(maxAttempts int) *inventory.RetryCoordinator {
	return inventory.NewRetryCoordinator(maxAttempts, time.Millisecond, logger.Nop())
}

func TestRetry_ExitoAlPrimerIntento(t *testing.T) {
	calls := 0
	err := newCoordinator(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ConflictoDeVersionReintentaHastaExito(t *testing.T) {
	calls := 0
	err := newCoordinator(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return domain.ErrVersionConflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "debe reintentar hasta el tercer intento")
}

func TestRetry_TimeoutDeBloqueoTambienReintenta(t *testing.T) {
	calls := 0
	err := newCoordinator(2).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return domain.ErrLockTimeout
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

// Los fallos de regla de negocio se propagan de inmediato, sin reintento.
func TestRetry_ErrorDeNegocioNoReintenta(t *testing.T) {
	calls := 0
	businessErr := &domain.InsufficientStockError{Requested: 10, Available: 3}
	err := newCoordinator(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return businessErr
	})

	assert.Equal(t, 1, calls, "stock insuficiente no es un error transitorio")

	var insufficient *domain.InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)

	var exhausted *domain.ConcurrencyExhaustedError
	assert.False(t, errors.As(err, &exhausted),
		"un fallo de negocio nunca debe envolverse como concurrencia agotada")
}

func TestRetry_IntentosAgotados(t *testing.T) {
	calls := 0
	err := newCoordinator(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return domain.ErrVersionConflict
	})

	assert.Equal(t, 3, calls)

	var exhausted *domain.ConcurrencyExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestRetry_ValoresPorDefecto(t *testing.T) {
	// maxAttempts fuera de rango cae en el valor por defecto (3)
	calls := 0
	coordinator := inventory.NewRetryCoordinator(0, time.Millisecond, logger.Nop())
	_ = coordinator.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return domain.ErrVersionConflict
	})
	assert.Equal(t, inventory.DefaultMaxAttempts, calls)
}
