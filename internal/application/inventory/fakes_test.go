package inventory_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: reproducen el contrato de la capa postgres (bloqueo de
// fila vía mutex, CAS de versión, rollback si la función de la tx falla) para
// ejercitar los casos de uso sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	records   map[string]*entity.StockRecord
	movements []*entity.StockMovement
	warehouse map[string]*entity.WarehouseStock
}

func newMemStore() *memStore {
	return &memStore{
		records:   make(map[string]*entity.StockRecord),
		warehouse: make(map[string]*entity.WarehouseStock),
	}
}

func whKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

func copyRecord(r *entity.StockRecord) *entity.StockRecord {
	cp := *r
	return &cp
}

func copyWarehouse(w *entity.WarehouseStock) *entity.WarehouseStock {
	cp := *w
	return &cp
}

// memTxRunner implementa inventory.TxRunner. El mutex del store serializa las
// transacciones (el papel del SELECT FOR UPDATE); los cambios quedan en
// staging y solo se aplican si fn retorna nil.
type memTxRunner struct {
	store *memStore

	// failUpdates hace fallar las próximas N llamadas a UpdateWithVersion con
	// ErrVersionConflict, para simular escritores en competencia.
	failUpdates int
}

func (r *memTxRunner) Run(_ context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	movementRepo repository.StockMovementRepository,
	warehouseRepo repository.WarehouseStockRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx := &memTx{
		runner:    r,
		records:   make(map[string]*entity.StockRecord),
		warehouse: make(map[string]*entity.WarehouseStock),
	}
	if err := fn(&txRecordRepo{tx}, &txMovementRepo{tx}, &txWarehouseRepo{tx}); err != nil {
		return err // rollback: el staging se descarta
	}

	for id, rec := range tx.records {
		r.store.records[id] = rec
	}
	for key, wh := range tx.warehouse {
		r.store.warehouse[key] = wh
	}
	r.store.movements = append(r.store.movements, tx.movements...)
	return nil
}

type memTx struct {
	runner    *memTxRunner
	records   map[string]*entity.StockRecord
	warehouse map[string]*entity.WarehouseStock
	movements []*entity.StockMovement
}

func (tx *memTx) record(productID string) (*entity.StockRecord, bool) {
	if rec, ok := tx.records[productID]; ok {
		return rec, true
	}
	rec, ok := tx.runner.store.records[productID]
	return rec, ok
}

type txRecordRepo struct{ tx *memTx }

func (r *txRecordRepo) GetByProduct(_ context.Context, productID string) (*entity.StockRecord, error) {
	rec, ok := r.tx.record(productID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (r *txRecordRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.GetByProduct(ctx, productID)
}

func (r *txRecordRepo) Create(_ context.Context, record *entity.StockRecord) error {
	if _, ok := r.tx.record(record.ProductID); ok {
		return domain.ErrDuplicate
	}
	r.tx.records[record.ProductID] = copyRecord(record)
	return nil
}

func (r *txRecordRepo) UpdateWithVersion(_ context.Context, record *entity.StockRecord) error {
	if r.tx.runner.failUpdates > 0 {
		r.tx.runner.failUpdates--
		return domain.ErrVersionConflict
	}
	current, ok := r.tx.record(record.ProductID)
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != record.Version {
		return domain.ErrVersionConflict
	}
	record.Version++
	r.tx.records[record.ProductID] = copyRecord(record)
	return nil
}

func (r *txRecordRepo) FindBelowThreshold(_ context.Context, threshold int64) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, rec := range r.tx.runner.store.records {
		if rec.AvailableQuantity <= threshold {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (r *txRecordRepo) List(_ context.Context, limit, offset int) ([]*entity.StockRecord, error) {
	return listRecords(r.tx.runner.store, limit, offset), nil
}

type txMovementRepo struct{ tx *memTx }

func (r *txMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	cp := *movement
	r.tx.movements = append(r.tx.movements, &cp)
	return nil
}

func (r *txMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	for _, mov := range r.tx.runner.store.movements {
		if mov.ID == id {
			return mov, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *txMovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return listMovements(r.tx.runner.store, productID, from, to, limit, offset), nil
}

func (r *txMovementRepo) CountByProduct(_ context.Context, productID string) (int64, error) {
	return countMovements(r.tx.runner.store, productID), nil
}

type txWarehouseRepo struct{ tx *memTx }

func (r *txWarehouseRepo) get(productID, warehouseID string) (*entity.WarehouseStock, bool) {
	key := whKey(productID, warehouseID)
	if wh, ok := r.tx.warehouse[key]; ok {
		return wh, true
	}
	wh, ok := r.tx.runner.store.warehouse[key]
	return wh, ok
}

func (r *txWarehouseRepo) Get(_ context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	if wh, ok := r.get(productID, warehouseID); ok {
		return copyWarehouse(wh), nil
	}
	return &entity.WarehouseStock{ProductID: productID, WarehouseID: warehouseID}, nil
}

func (r *txWarehouseRepo) GetForUpdate(_ context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	if wh, ok := r.get(productID, warehouseID); ok {
		return copyWarehouse(wh), nil
	}
	return nil, domain.ErrNotFound
}

func (r *txWarehouseRepo) Upsert(_ context.Context, stock *entity.WarehouseStock) error {
	r.tx.warehouse[whKey(stock.ProductID, stock.WarehouseID)] = copyWarehouse(stock)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Repos "atados al pool": toman el mutex en cada llamada (lecturas fuera de tx).
// ──────────────────────────────────────────────────────────────────────────────

type memRecords struct{ store *memStore }

func (r *memRecords) GetByProduct(_ context.Context, productID string) (*entity.StockRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.records[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (r *memRecords) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.GetByProduct(ctx, productID)
}

func (r *memRecords) Create(_ context.Context, record *entity.StockRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.records[record.ProductID]; ok {
		return domain.ErrDuplicate
	}
	r.store.records[record.ProductID] = copyRecord(record)
	return nil
}

func (r *memRecords) UpdateWithVersion(_ context.Context, record *entity.StockRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.records[record.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != record.Version {
		return domain.ErrVersionConflict
	}
	record.Version++
	r.store.records[record.ProductID] = copyRecord(record)
	return nil
}

func (r *memRecords) FindBelowThreshold(_ context.Context, threshold int64) ([]*entity.StockRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.StockRecord
	for _, rec := range r.store.records {
		if rec.AvailableQuantity <= threshold {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *memRecords) List(_ context.Context, limit, offset int) ([]*entity.StockRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return listRecords(r.store, limit, offset), nil
}

type memMovements struct{ store *memStore }

func (r *memMovements) Create(_ context.Context, movement *entity.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *movement
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

func (r *memMovements) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, mov := range r.store.movements {
		if mov.ID == id {
			return mov, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memMovements) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return listMovements(r.store, productID, from, to, limit, offset), nil
}

func (r *memMovements) CountByProduct(_ context.Context, productID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return countMovements(r.store, productID), nil
}

// listRecords asume que el caller ya tiene el mutex.
func listRecords(store *memStore, limit, offset int) []*entity.StockRecord {
	all := make([]*entity.StockRecord, 0, len(store.records))
	for _, rec := range store.records {
		all = append(all, copyRecord(rec))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ProductID < all[j].ProductID })
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func listMovements(store *memStore, productID string, from, to *time.Time, limit, offset int) []*entity.StockMovement {
	var out []*entity.StockMovement
	// Recorrido inverso: del más reciente al más antiguo
	for i := len(store.movements) - 1; i >= 0; i-- {
		mov := store.movements[i]
		if mov.ProductID != productID {
			continue
		}
		if from != nil && mov.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && mov.CreatedAt.After(*to) {
			continue
		}
		out = append(out, mov)
	}
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func countMovements(store *memStore, productID string) int64 {
	var n int64
	for _, mov := range store.movements {
		if mov.ProductID == productID {
			n++
		}
	}
	return n
}

// fakeCache implementa inventory.CacheClient sobre un map (TTL ignorado).
type fakeCache struct {
	mu       sync.Mutex
	values   map[string]string
	getCalls int
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getCalls++
	val, ok := c.values[key]
	if !ok {
		return "", inventory.ErrCacheMiss
	}
	return val, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

var _ inventory.TxRunner = (*memTxRunner)(nil)
var _ repository.StockRecordRepository = (*memRecords)(nil)
var _ repository.StockMovementRepository = (*memMovements)(nil)
var _ inventory.CacheClient = (*fakeCache)(nil)
