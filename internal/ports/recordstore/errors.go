// Package recordstore define el contrato de errores de los adapters de almacenamiento.
// Los services traducen estos errores a errores de dominio.
package recordstore

import "errors"

var (
	// ErrNotFound: el registro no existe.
	ErrNotFound = errors.New("record store: not found")
	// ErrConflict: el store rechazó la escritura por una restricción de unicidad.
	ErrConflict = errors.New("record store: unique constraint violated")
	// ErrUnavailable: falla de infraestructura (red, timeout, conexión caída).
	ErrUnavailable = errors.New("record store: unavailable")
)
