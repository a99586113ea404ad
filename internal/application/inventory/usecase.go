package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockOperationUseCase es el motor de operaciones de inventario. Cada
// operación mutadora corre dentro de un bloqueo de fila (SELECT FOR UPDATE),
// valida contra los contadores recién leídos, escribe con CAS sobre la versión
// y anota exactamente una entrada en el libro de movimientos, todo en una
// transacción. El coordinador de reintentos re-ejecuta la secuencia completa
// ante conflictos de concurrencia.
type StockOperationUseCase struct {
	txRunner TxRunner
	retry    *RetryCoordinator
	records  repository.StockRecordRepository // atado al pool, solo lecturas
}

// NewStockOperationUseCase construye el motor.
func NewStockOperationUseCase(txRunner TxRunner, retry *RetryCoordinator, records repository.StockRecordRepository) *StockOperationUseCase {
	return &StockOperationUseCase{txRunner: txRunner, retry: retry, records: records}
}

// OperationInput entrada común de las operaciones sobre un producto.
type OperationInput struct {
	ProductID       string
	Quantity        int64
	Reason          string
	ReferenceNumber string // ej. id de orden o carrito
	RequestedBy     string
}

// IncreaseInput entrada de reposición; UnitCost opcional actualiza el costo
// promedio ponderado del registro.
type IncreaseInput struct {
	OperationInput
	UnitCost *decimal.Decimal
}

// MoveInput entrada de traslado entre bodegas.
type MoveInput struct {
	OperationInput
	FromWarehouseID string
	ToWarehouseID   string
}

// AdjustInput entrada de ajuste manual. Quantity lleva signo: positivo entra,
// negativo sale. Type debe ser ADJUSTMENT, EXPIRED, DAMAGED o RETURNED.
type AdjustInput struct {
	OperationInput
	Type string
}

// CreateInput entrada para crear el registro de stock de un producto nuevo.
type CreateInput struct {
	ProductID       string
	InitialQuantity int64
	MinStockLevel   int64
	RequestedBy     string
}

// GetRecord lee los contadores actuales sin bloquear.
func (uc *StockOperationUseCase) GetRecord(ctx context.Context, productID string) (*entity.StockRecord, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.records.GetByProduct(ctx, productID)
}

// CreateStockRecord crea el registro inicial de un producto: disponible =
// total = cantidad inicial, reservado = 0, versión 1. Si la cantidad inicial
// es positiva anota una entrada ADJUSTMENT para que el libro reconstruya el
// registro desde cero.
func (uc *StockOperationUseCase) CreateStockRecord(ctx context.Context, in CreateInput) (*entity.StockRecord, error) {
	if in.ProductID == "" || in.InitialQuantity < 0 || in.MinStockLevel < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	record := &entity.StockRecord{
		ProductID:         in.ProductID,
		TotalQuantity:     in.InitialQuantity,
		AvailableQuantity: in.InitialQuantity,
		ReservedQuantity:  0,
		MinStockLevel:     in.MinStockLevel,
		AverageCost:       decimal.Zero,
		Version:           1,
		UpdatedAt:         now,
	}
	if in.InitialQuantity > 0 {
		record.LastRestockedAt = &now
	}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movementRepo repository.StockMovementRepository,
		_ repository.WarehouseStockRepository,
	) error {
		if err := recordRepo.Create(ctx, record); err != nil {
			return err
		}
		if in.InitialQuantity == 0 {
			return nil
		}
		mov := newMovement(in.ProductID, entity.MovementTypeAdjustment, in.InitialQuantity, 0, 0, now)
		mov.Reason = "carga inicial"
		mov.RequestedBy = in.RequestedBy
		return movementRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DecreaseStock saca unidades vendidas del pool: disponible y total bajan.
func (uc *StockOperationUseCase) DecreaseStock(ctx context.Context, in OperationInput) (*entity.StockRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return uc.mutateRecord(ctx, in, entity.MovementTypeDecrease, -in.Quantity,
		func(rec *entity.StockRecord) error {
			if rec.AvailableQuantity < in.Quantity {
				return &domain.InsufficientStockError{Requested: in.Quantity, Available: rec.AvailableQuantity}
			}
			rec.AvailableQuantity -= in.Quantity
			rec.TotalQuantity -= in.Quantity
			return nil
		}, nil)
}

// IncreaseStock repone unidades: disponible y total suben. Con UnitCost
// presente recalcula el costo promedio ponderado antes de sumar.
func (uc *StockOperationUseCase) IncreaseStock(ctx context.Context, in IncreaseInput) (*entity.StockRecord, error) {
	if err := validateInput(in.OperationInput); err != nil {
		return nil, err
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutateRecord(ctx, in.OperationInput, entity.MovementTypeIncrease, in.Quantity,
		func(rec *entity.StockRecord) error {
			if in.UnitCost != nil {
				rec.AverageCost = domaininv.WeightedAverageCost(rec.TotalQuantity, rec.AverageCost, in.Quantity, *in.UnitCost)
			}
			rec.AvailableQuantity += in.Quantity
			rec.TotalQuantity += in.Quantity
			now := time.Now()
			rec.LastRestockedAt = &now
			return nil
		},
		func(mov *entity.StockMovement) {
			if in.UnitCost != nil {
				mov.UnitCost = *in.UnitCost
				mov.TotalCost = in.UnitCost.Mul(decimal.NewFromInt(in.Quantity))
			}
		})
}

// ReserveStock aparta unidades contra una orden pendiente: disponible baja,
// reservado sube, el total no cambia.
func (uc *StockOperationUseCase) ReserveStock(ctx context.Context, in OperationInput) (*entity.StockRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return uc.mutateRecord(ctx, in, entity.MovementTypeReserve, in.Quantity,
		func(rec *entity.StockRecord) error {
			if rec.AvailableQuantity < in.Quantity {
				return &domain.InsufficientStockError{Requested: in.Quantity, Available: rec.AvailableQuantity}
			}
			rec.AvailableQuantity -= in.Quantity
			rec.ReservedQuantity += in.Quantity
			return nil
		}, nil)
}

// ConfirmReservation consuma una reserva: las unidades salen definitivamente
// del pool vendible (reservado y total bajan, disponible no cambia).
func (uc *StockOperationUseCase) ConfirmReservation(ctx context.Context, in OperationInput) (*entity.StockRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return uc.mutateRecord(ctx, in, entity.MovementTypeConfirmReservation, -in.Quantity,
		func(rec *entity.StockRecord) error {
			if rec.ReservedQuantity < in.Quantity {
				return &domain.InsufficientReservedError{Requested: in.Quantity, Reserved: rec.ReservedQuantity}
			}
			rec.ReservedQuantity -= in.Quantity
			rec.TotalQuantity -= in.Quantity
			return nil
		}, nil)
}

// CancelReservation devuelve una reserva al pool vendible: reservado baja,
// disponible sube, el total no cambia.
func (uc *StockOperationUseCase) CancelReservation(ctx context.Context, in OperationInput) (*entity.StockRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return uc.mutateRecord(ctx, in, entity.MovementTypeCancelReservation, in.Quantity,
		func(rec *entity.StockRecord) error {
			if rec.ReservedQuantity < in.Quantity {
				return &domain.InsufficientReservedError{Requested: in.Quantity, Reserved: rec.ReservedQuantity}
			}
			rec.ReservedQuantity -= in.Quantity
			rec.AvailableQuantity += in.Quantity
			return nil
		}, nil)
}

// AdjustStock registra un ajuste manual (conteo físico, vencidos, dañados,
// devoluciones). Positivo entra como una reposición; negativo sale con la
// misma regla de stock insuficiente que una salida.
func (uc *StockOperationUseCase) AdjustStock(ctx context.Context, in AdjustInput) (*entity.StockRecord, error) {
	if in.ProductID == "" || in.Quantity == 0 {
		return nil, domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementTypeAdjustment:
		// ambos signos permitidos
	case entity.MovementTypeExpired, entity.MovementTypeDamaged:
		if in.Quantity >= 0 {
			return nil, domain.ErrInvalidInput
		}
	case entity.MovementTypeReturned:
		if in.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	return uc.mutateRecord(ctx, in.OperationInput, in.Type, in.Quantity,
		func(rec *entity.StockRecord) error {
			if in.Quantity > 0 {
				rec.AvailableQuantity += in.Quantity
				rec.TotalQuantity += in.Quantity
				return nil
			}
			out := -in.Quantity
			if rec.AvailableQuantity < out {
				return &domain.InsufficientStockError{Requested: out, Available: rec.AvailableQuantity}
			}
			rec.AvailableQuantity -= out
			rec.TotalQuantity -= out
			return nil
		}, nil)
}

// MoveStock traslada unidades entre bodegas: resta en la bodega origen y suma
// en la destino dentro de la misma transacción. A nivel agregado es neutro
// (los contadores del registro no cambian) pero la versión sube igual para
// serializar traslados concurrentes, y el libro recibe dos entradas
// (MOVE_OUT y MOVE_IN) con el mismo transaction id.
func (uc *StockOperationUseCase) MoveStock(ctx context.Context, in MoveInput) (*entity.StockRecord, error) {
	if err := validateInput(in.OperationInput); err != nil {
		return nil, err
	}
	if in.FromWarehouseID == "" || in.ToWarehouseID == "" || in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.StockRecord
	err := uc.retry.Do(ctx, func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(
			recordRepo repository.StockRecordRepository,
			movementRepo repository.StockMovementRepository,
			warehouseRepo repository.WarehouseStockRepository,
		) error {
			// Bloquea el registro del producto: serializa con el resto de operaciones
			rec, err := recordRepo.GetForUpdate(ctx, in.ProductID)
			if err != nil {
				return err
			}
			origin, err := warehouseRepo.GetForUpdate(ctx, in.ProductID, in.FromWarehouseID)
			if err != nil {
				return err
			}
			if origin.Quantity < in.Quantity {
				return &domain.InsufficientStockError{Requested: in.Quantity, Available: origin.Quantity}
			}
			dest, err := warehouseRepo.Get(ctx, in.ProductID, in.ToWarehouseID)
			if err != nil {
				return err
			}
			now := time.Now()
			origin.Quantity -= in.Quantity
			dest.Quantity += in.Quantity
			origin.UpdatedAt = now
			dest.UpdatedAt = now
			if err := warehouseRepo.Upsert(ctx, origin); err != nil {
				return err
			}
			if err := warehouseRepo.Upsert(ctx, dest); err != nil {
				return err
			}

			prevAvailable, prevReserved := rec.AvailableQuantity, rec.ReservedQuantity
			rec.UpdatedAt = now
			if err := recordRepo.UpdateWithVersion(ctx, rec); err != nil {
				return err
			}

			txID := uuid.New().String()
			outMov := newMovement(in.ProductID, entity.MovementTypeMoveOut, -in.Quantity, prevAvailable, prevReserved, now)
			outMov.TransactionID = txID
			outMov.WarehouseID = &in.FromWarehouseID
			fillRequestFields(outMov, in.OperationInput)
			if err := movementRepo.Create(ctx, outMov); err != nil {
				return err
			}
			inMov := newMovement(in.ProductID, entity.MovementTypeMoveIn, in.Quantity, prevAvailable, prevReserved, now)
			inMov.TransactionID = txID
			inMov.WarehouseID = &in.ToWarehouseID
			fillRequestFields(inMov, in.OperationInput)
			if err := movementRepo.Create(ctx, inMov); err != nil {
				return err
			}
			out = rec
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mutateRecord ejecuta la secuencia común de toda mutación de contadores:
// reintento -> transacción -> bloqueo de fila -> validar/mutar -> CAS de
// versión -> entrada del libro. apply muta los contadores sobre los datos
// recién leídos; decorate (opcional) completa campos del movimiento.
func (uc *StockOperationUseCase) mutateRecord(
	ctx context.Context,
	in OperationInput,
	movementType string,
	movementQty int64,
	apply func(rec *entity.StockRecord) error,
	decorate func(mov *entity.StockMovement),
) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := uc.retry.Do(ctx, func(ctx context.Context) error {
		return uc.txRunner.Run(ctx, func(
			recordRepo repository.StockRecordRepository,
			movementRepo repository.StockMovementRepository,
			_ repository.WarehouseStockRepository,
		) error {
			// Re-lee bajo bloqueo: la validación nunca confía en un snapshot del caller
			rec, err := recordRepo.GetForUpdate(ctx, in.ProductID)
			if err != nil {
				return err
			}
			prevAvailable, prevReserved := rec.AvailableQuantity, rec.ReservedQuantity
			if err := apply(rec); err != nil {
				return err
			}
			now := time.Now()
			rec.UpdatedAt = now
			if err := recordRepo.UpdateWithVersion(ctx, rec); err != nil {
				return err
			}
			mov := newMovement(in.ProductID, movementType, movementQty, prevAvailable, prevReserved, now)
			fillRequestFields(mov, in)
			if decorate != nil {
				decorate(mov)
			}
			if err := movementRepo.Create(ctx, mov); err != nil {
				return err
			}
			out = rec
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// newMovement arma la entrada del libro con el snapshot pre-mutación.
func newMovement(productID, movementType string, quantity, prevAvailable, prevReserved int64, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:                uuid.New().String(),
		TransactionID:     uuid.New().String(),
		ProductID:         productID,
		Type:              movementType,
		Quantity:          quantity,
		PreviousAvailable: prevAvailable,
		PreviousReserved:  prevReserved,
		UnitCost:          decimal.Zero,
		TotalCost:         decimal.Zero,
		CreatedAt:         now,
	}
}

func fillRequestFields(mov *entity.StockMovement, in OperationInput) {
	mov.Reason = in.Reason
	mov.ReferenceNumber = in.ReferenceNumber
	mov.RequestedBy = in.RequestedBy
}

func validateInput(in OperationInput) error {
	if in.ProductID == "" || in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}
