// Package repository define las entidades de dominio y las interfaces de
// repositorio, independientes del almacenamiento subyacente.
//
// La implementación concreta vive en internal/store/pg.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
//   - Las transiciones de estado son UPDATEs condicionados: cero filas
//     afectadas se reporta como ErrStaleState, nunca se reintenta
package repository
