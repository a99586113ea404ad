package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("registro de stock no encontrado")
	ErrDuplicate       = errors.New("el registro de stock ya existe")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrVersionConflict = errors.New("conflicto de versión: el registro fue modificado por otra operación")
	ErrLockTimeout     = errors.New("timeout esperando el bloqueo de la fila de stock")
)

// InsufficientStockError indica que la cantidad disponible no cubre lo solicitado.
// Lleva las cantidades para el mensaje al cliente; nunca se reintenta.
type InsufficientStockError struct {
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d", e.Requested, e.Available)
}

// InsufficientReservedError indica que la cantidad reservada no cubre lo solicitado.
type InsufficientReservedError struct {
	Requested int64
	Reserved  int64
}

func (e *InsufficientReservedError) Error() string {
	return fmt.Sprintf("reserva insuficiente: solicitado %d, reservado %d", e.Requested, e.Reserved)
}

// ConcurrencyExhaustedError se devuelve cuando el coordinador de reintentos
// agota los intentos por conflictos de concurrencia consecutivos. Es el único
// punto donde un conflicto de versión o timeout de bloqueo escapa como fallo
// terminal.
type ConcurrencyExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ConcurrencyExhaustedError) Error() string {
	return fmt.Sprintf("concurrencia agotada tras %d intentos: %v", e.Attempts, e.Err)
}

func (e *ConcurrencyExhaustedError) Unwrap() error { return e.Err }
