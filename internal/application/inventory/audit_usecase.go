package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// MovementAuditUseCase expone el libro de movimientos a los consumidores de
// auditoría y cumplimiento. El stream es completo e inmutable; se entrega del
// más reciente al más antiguo.
type MovementAuditUseCase struct {
	movements repository.StockMovementRepository
}

// NewMovementAuditUseCase construye el caso de uso de auditoría.
func NewMovementAuditUseCase(movements repository.StockMovementRepository) *MovementAuditUseCase {
	return &MovementAuditUseCase{movements: movements}
}

// ListMovements lista el historial de un producto en un rango de fechas,
// ordenado del más reciente al más antiguo.
func (uc *MovementAuditUseCase) ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movements.ListByProduct(ctx, productID, from, to, limit, offset)
}

// GetMovement obtiene una entrada puntual del libro por su id (consulta de
// detalle de auditoría). Devuelve domain.ErrNotFound si no existe.
func (uc *MovementAuditUseCase) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movements.GetByID(ctx, id)
}

// CountMovements cuenta las entradas del libro para un producto
// (reconciliación contra operaciones confirmadas).
func (uc *MovementAuditUseCase) CountMovements(ctx context.Context, productID string) (int64, error) {
	if productID == "" {
		return 0, domain.ErrInvalidInput
	}
	return uc.movements.CountByProduct(ctx, productID)
}
