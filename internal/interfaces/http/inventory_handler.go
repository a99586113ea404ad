package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-engine/internal/domain/inventory"
)

// InventoryHandler maneja las peticiones HTTP del motor de stock.
type InventoryHandler struct {
	ops       *inventory.StockOperationUseCase
	validator *inventory.ConsistencyValidatorUseCase
	scanner   *inventory.ThresholdScannerUseCase
	audit     *inventory.MovementAuditUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	ops *inventory.StockOperationUseCase,
	validator *inventory.ConsistencyValidatorUseCase,
	scanner *inventory.ThresholdScannerUseCase,
	audit *inventory.MovementAuditUseCase,
) *InventoryHandler {
	return &InventoryHandler{ops: ops, validator: validator, scanner: scanner, audit: audit}
}

// Create godoc
// @Summary      Crear registro de stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequest  true  "product_id, initial_quantity, min_stock_level"
// @Success      201   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.ops.CreateStockRecord(c.Context(), inventory.CreateInput{
		ProductID:       in.ProductID,
		InitialQuantity: in.InitialQuantity,
		MinStockLevel:   in.MinStockLevel,
		RequestedBy:     in.RequestedBy,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toRecordResponse(rec))
}

// Get devuelve los contadores actuales de un producto.
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	rec, err := h.ops.GetRecord(c.Context(), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// Decrease godoc
// @Summary      Descontar stock vendido
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Param        body  body  dto.OperationRequest  true  "quantity, reason, reference_number, requested_by"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/decrease [post]
func (h *InventoryHandler) Decrease(c *fiber.Ctx) error {
	return h.runOperation(c, h.ops.DecreaseStock)
}

// Reserve aparta unidades contra una orden o carrito pendiente.
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	return h.runOperation(c, h.ops.ReserveStock)
}

// ConfirmReservation consuma una reserva pendiente.
func (h *InventoryHandler) ConfirmReservation(c *fiber.Ctx) error {
	return h.runOperation(c, h.ops.ConfirmReservation)
}

// CancelReservation devuelve una reserva al pool vendible.
func (h *InventoryHandler) CancelReservation(c *fiber.Ctx) error {
	return h.runOperation(c, h.ops.CancelReservation)
}

// Increase repone stock; unit_cost opcional actualiza el costo promedio.
func (h *InventoryHandler) Increase(c *fiber.Ctx) error {
	var in dto.OperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.ops.IncreaseStock(c.Context(), inventory.IncreaseInput{
		OperationInput: operationInput(c, in),
		UnitCost:       in.UnitCost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// Move traslada unidades entre bodegas.
func (h *InventoryHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.ops.MoveStock(c.Context(), inventory.MoveInput{
		OperationInput: inventory.OperationInput{
			ProductID:       c.Params("productId"),
			Quantity:        in.Quantity,
			Reason:          in.Reason,
			ReferenceNumber: in.ReferenceNumber,
			RequestedBy:     in.RequestedBy,
		},
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// Adjust registra un ajuste manual (ADJUSTMENT, EXPIRED, DAMAGED, RETURNED).
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.ops.AdjustStock(c.Context(), inventory.AdjustInput{
		OperationInput: inventory.OperationInput{
			ProductID:       c.Params("productId"),
			Quantity:        in.Quantity,
			Reason:          in.Reason,
			ReferenceNumber: in.ReferenceNumber,
			RequestedBy:     in.RequestedBy,
		},
		Type: in.Type,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// Validate godoc
// @Summary      Verificar consistencia de contadores
// @Tags         stock
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ValidationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/validate [get]
func (h *InventoryHandler) Validate(c *fiber.Ctx) error {
	result, err := h.validator.Validate(c.Context(), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ValidationResponse{
		ProductID:     result.ProductID,
		Consistent:    result.Consistent,
		ExpectedTotal: result.ExpectedTotal,
		ActualTotal:   result.ActualTotal,
		Available:     result.Available,
		Reserved:      result.Reserved,
		Version:       result.Version,
	})
}

// LowStock lista registros con disponible <= threshold, con su clasificación.
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	threshold := int64(c.QueryInt("threshold", 0))
	items, err := h.scanner.FindBelowThreshold(c.Context(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockRecordResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toRecordResponse(item.Record))
	}
	return c.JSON(fiber.Map{"total": len(out), "records": out})
}

// Summary devuelve el conteo de registros por clasificación (cacheado).
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.scanner.Summary(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Movements lista el historial de auditoría de un producto (más reciente primero).
// from/to en RFC 3339; limit/offset para paginar.
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from inválido (RFC 3339)"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to inválido (RFC 3339)"})
		}
		to = &t
	}

	movements, err := h.audit.ListMovements(c.Context(), c.Params("productId"), from, to, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Movement devuelve una entrada puntual del libro por su id.
func (h *InventoryHandler) Movement(c *fiber.Ctx) error {
	mov, err := h.audit.GetMovement(c.Context(), c.Params("movementId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResponse(mov))
}

// runOperation parsea el body común y ejecuta la operación indicada.
func (h *InventoryHandler) runOperation(
	c *fiber.Ctx,
	op func(ctx context.Context, in inventory.OperationInput) (*entity.StockRecord, error),
) error {
	var in dto.OperationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := op(c.Context(), operationInput(c, in))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

func operationInput(c *fiber.Ctx, in dto.OperationRequest) inventory.OperationInput {
	return inventory.OperationInput{
		ProductID:       c.Params("productId"),
		Quantity:        in.Quantity,
		Reason:          in.Reason,
		ReferenceNumber: in.ReferenceNumber,
		RequestedBy:     in.RequestedBy,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                m.ID,
		TransactionID:     m.TransactionID,
		ProductID:         m.ProductID,
		WarehouseID:       m.WarehouseID,
		Type:              m.Type,
		Quantity:          m.Quantity,
		PreviousAvailable: m.PreviousAvailable,
		PreviousReserved:  m.PreviousReserved,
		UnitCost:          m.UnitCost,
		TotalCost:         m.TotalCost,
		Reason:            m.Reason,
		ReferenceNumber:   m.ReferenceNumber,
		RequestedBy:       m.RequestedBy,
		CreatedAt:         m.CreatedAt,
	}
}

func toRecordResponse(rec *entity.StockRecord) dto.StockRecordResponse {
	return dto.StockRecordResponse{
		ProductID:         rec.ProductID,
		TotalQuantity:     rec.TotalQuantity,
		AvailableQuantity: rec.AvailableQuantity,
		ReservedQuantity:  rec.ReservedQuantity,
		MinStockLevel:     rec.MinStockLevel,
		AverageCost:       rec.AverageCost,
		Status:            string(domaininv.Classify(rec)),
		Version:           rec.Version,
		LastRestockedAt:   rec.LastRestockedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

// writeError traduce los errores tipados del dominio a códigos HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var insufficientStock *domain.InsufficientStockError
	var insufficientReserved *domain.InsufficientReservedError
	var exhausted *domain.ConcurrencyExhaustedError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "registro de stock no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el registro de stock ya existe"})
	case errors.As(err, &insufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: insufficientStock.Error()})
	case errors.As(err, &insufficientReserved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_RESERVED", Message: insufficientReserved.Error()})
	case errors.As(err, &exhausted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_EXHAUSTED", Message: "demasiada concurrencia sobre el producto, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
