package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrStaleState indica que una transición condicionada no afectó filas:
	// el estado cambió bajo nuestros pies. La capa HTTP lo mapea a
	// STALE_STATE; el cliente debe recargar, nunca reintentar a ciegas.
	ErrStaleState = errors.New("stale state")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoDatabase indica que no hay base de datos configurada.
	ErrNoDatabase = errors.New("no database configured")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStaleState verifica si el error es ErrStaleState.
func IsStaleState(err error) bool {
	return errors.Is(err, ErrStaleState)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
