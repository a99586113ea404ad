package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

const (
	summaryCacheKey = "stock:threshold_summary"
	summaryCacheTTL = 30 * time.Second
)

// ThresholdScannerUseCase clasifica registros contra sus niveles mínimos y
// expone la consulta batch de bajo stock para los jobs de alertas. Solo
// lecturas, sin bloqueos; el resumen se cachea en redis con TTL corto y ante
// fallo del caché se degrada a la BD.
type ThresholdScannerUseCase struct {
	records repository.StockRecordRepository
	cache   CacheClient // opcional, puede ser nil
	log     *logger.Logger
}

// NewThresholdScannerUseCase construye el scanner. cache puede ser nil.
func NewThresholdScannerUseCase(records repository.StockRecordRepository, cache CacheClient, log *logger.Logger) *ThresholdScannerUseCase {
	return &ThresholdScannerUseCase{records: records, cache: cache, log: log}
}

// ClassifiedRecord registro junto a su clasificación de urgencia.
type ClassifiedRecord struct {
	Record *entity.StockRecord
	Status domaininv.StockStatus
}

// ThresholdSummary conteo de registros por clasificación.
type ThresholdSummary struct {
	OutOfStock int `json:"out_of_stock"`
	Critical   int `json:"critical"`
	Low        int `json:"low"`
	Normal     int `json:"normal"`
	Total      int `json:"total"`
}

// FindBelowThreshold lista los registros con disponible <= threshold,
// cada uno con su clasificación.
func (uc *ThresholdScannerUseCase) FindBelowThreshold(ctx context.Context, threshold int64) ([]ClassifiedRecord, error) {
	records, err := uc.records.FindBelowThreshold(ctx, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, ClassifiedRecord{Record: rec, Status: domaininv.Classify(rec)})
	}
	return out, nil
}

// Summary cuenta registros por clasificación recorriendo todos los registros.
// Sirve el resultado desde redis cuando hay una copia fresca.
func (uc *ThresholdScannerUseCase) Summary(ctx context.Context) (*ThresholdSummary, error) {
	if uc.cache != nil {
		raw, err := uc.cache.Get(ctx, summaryCacheKey)
		switch {
		case err == nil:
			var cached ThresholdSummary
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return &cached, nil
			}
		case !errors.Is(err, ErrCacheMiss):
			// Caché degradado: se registra y el conteo sale de la BD
			uc.log.Warn().Err(err).Msg("no se pudo leer el resumen de umbrales del caché")
		}
	}

	summary := &ThresholdSummary{}
	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		page, err := uc.records.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, rec := range page {
			summary.Total++
			switch domaininv.Classify(rec) {
			case domaininv.StatusOutOfStock:
				summary.OutOfStock++
			case domaininv.StatusCritical:
				summary.Critical++
			case domaininv.StatusLow:
				summary.Low++
			default:
				summary.Normal++
			}
		}
		if len(page) < pageSize {
			break
		}
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(summary); err == nil {
			if err := uc.cache.Set(ctx, summaryCacheKey, string(raw), summaryCacheTTL); err != nil {
				// El caché es best-effort: el dato ya salió de la BD
				uc.log.Warn().Err(err).Msg("no se pudo cachear el resumen de umbrales")
			}
		}
	}
	return summary, nil
}
