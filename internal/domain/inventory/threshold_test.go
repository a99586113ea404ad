package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
)

func record(available, min int64) *entity.StockRecord {
	return &entity.StockRecord{
		ProductID:         "SKU-001",
		AvailableQuantity: available,
		MinStockLevel:     min,
	}
}

func TestClassify_TablaDeUmbrales(t *testing.T) {
	cases := []struct {
		name      string
		available int64
		min       int64
		want      inventory.StockStatus
	}{
		{"disponible cero es agotado", 0, 20, inventory.StatusOutOfStock},
		{"disponible negativo es agotado", -3, 20, inventory.StatusOutOfStock},
		{"bajo la mitad del mínimo es crítico", 8, 20, inventory.StatusCritical},
		{"exactamente la mitad del mínimo es crítico", 10, 20, inventory.StatusCritical},
		{"entre mitad y mínimo es bajo", 11, 20, inventory.StatusLow},
		{"exactamente el mínimo es bajo", 20, 20, inventory.StatusLow},
		{"sobre el mínimo es normal", 21, 20, inventory.StatusNormal},
		{"mínimo cero con stock es normal", 5, 0, inventory.StatusNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.Classify(record(tc.available, tc.min))
			assert.Equal(t, tc.want, got,
				"disponible=%d mínimo=%d debe clasificar como %s", tc.available, tc.min, tc.want)
		})
	}
}

// Un mínimo impar divide hacia abajo: con mínimo 5, la frontera crítica es 2.
func TestClassify_MinimoImpar(t *testing.T) {
	assert.Equal(t, inventory.StatusCritical, inventory.Classify(record(2, 5)))
	assert.Equal(t, inventory.StatusLow, inventory.Classify(record(3, 5)))
}
