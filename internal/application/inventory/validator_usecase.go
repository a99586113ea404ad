package inventory

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// ConsistencyValidatorUseCase verifica que disponible + reservado == total
// en un registro de stock. Lectura sin bloqueo (read-committed): puede ver
// datos levemente atrasados entre el commit de un escritor y el siguiente
// poll, lo cual es aceptado por el modelo de consistencia.
//
// Nunca repara: corregir contadores en silencio podría ocultar un bug real o
// una doble reserva. Las inconsistencias se registran para investigación
// manual.
type ConsistencyValidatorUseCase struct {
	records repository.StockRecordRepository
	log     *logger.Logger
}

// NewConsistencyValidatorUseCase construye el validador.
func NewConsistencyValidatorUseCase(records repository.StockRecordRepository, log *logger.Logger) *ConsistencyValidatorUseCase {
	return &ConsistencyValidatorUseCase{records: records, log: log}
}

// ValidationResult resultado de la verificación de un registro.
type ValidationResult struct {
	ProductID     string
	Consistent    bool
	ExpectedTotal int64 // disponible + reservado
	ActualTotal   int64
	Available     int64
	Reserved      int64
	Version       int64
}

// Validate verifica el invariante de un producto. Devuelve el detalle con
// valores esperados y reales; ante inconsistencia deja log de error.
func (uc *ConsistencyValidatorUseCase) Validate(ctx context.Context, productID string) (*ValidationResult, error) {
	rec, err := uc.records.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	result := &ValidationResult{
		ProductID:     rec.ProductID,
		Consistent:    rec.IsConsistent(),
		ExpectedTotal: rec.AvailableQuantity + rec.ReservedQuantity,
		ActualTotal:   rec.TotalQuantity,
		Available:     rec.AvailableQuantity,
		Reserved:      rec.ReservedQuantity,
		Version:       rec.Version,
	}
	if !result.Consistent {
		uc.log.Error().
			Str("product_id", rec.ProductID).
			Int64("expected_total", result.ExpectedTotal).
			Int64("actual_total", result.ActualTotal).
			Int64("available", rec.AvailableQuantity).
			Int64("reserved", rec.ReservedQuantity).
			Int64("version", rec.Version).
			Msg("inconsistencia de stock detectada: disponible + reservado != total")
	}
	return result, nil
}

// ValidateAll recorre todos los registros por páginas y devuelve solo los
// inconsistentes (para auditorías programadas).
func (uc *ConsistencyValidatorUseCase) ValidateAll(ctx context.Context) ([]*ValidationResult, error) {
	const pageSize = 500
	var findings []*ValidationResult
	for offset := 0; ; offset += pageSize {
		page, err := uc.records.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, rec := range page {
			if rec.IsConsistent() {
				continue
			}
			uc.log.Error().
				Str("product_id", rec.ProductID).
				Int64("expected_total", rec.AvailableQuantity+rec.ReservedQuantity).
				Int64("actual_total", rec.TotalQuantity).
				Msg("inconsistencia de stock detectada en auditoría batch")
			findings = append(findings, &ValidationResult{
				ProductID:     rec.ProductID,
				Consistent:    false,
				ExpectedTotal: rec.AvailableQuantity + rec.ReservedQuantity,
				ActualTotal:   rec.TotalQuantity,
				Available:     rec.AvailableQuantity,
				Reserved:      rec.ReservedQuantity,
				Version:       rec.Version,
			})
		}
		if len(page) < pageSize {
			return findings, nil
		}
	}
}
