// Package types define tipos de dominio compartidos entre paquetes.
package types

import "strings"

// WarrantyStatus representa el estado del ciclo de vida de una garantía.
//
// Transiciones legales (el servidor es el único árbitro):
//
//	issued            → active (activación por el dueño)
//	issued            → suspended | revoked
//	issued_unassigned → revoked
//	active            → suspended
//	suspended         → issued (unsuspend; no restaura el estado previo)
//	revoked           → terminal
type WarrantyStatus string

const (
	// StatusIssued garantía emitida y vinculada a una cuenta, aún no activada.
	StatusIssued WarrantyStatus = "issued"
	// StatusIssuedUnassigned garantía emitida sin cuenta vinculada.
	StatusIssuedUnassigned WarrantyStatus = "issued_unassigned"
	// StatusActive garantía activada por su dueño. Punto de compromiso:
	// una garantía activa ya no puede reembolsarse.
	StatusActive WarrantyStatus = "active"
	// StatusSuspended garantía suspendida por un admin (reversible).
	StatusSuspended WarrantyStatus = "suspended"
	// StatusRevoked garantía revocada por reembolso. Terminal.
	StatusRevoked WarrantyStatus = "revoked"
)

// IsValid retorna true si el estado es conocido.
func (s WarrantyStatus) IsValid() bool {
	switch s {
	case StatusIssued, StatusIssuedUnassigned, StatusActive, StatusSuspended, StatusRevoked:
		return true
	}
	return false
}

// IsTerminal retorna true si no hay transiciones salientes.
func (s WarrantyStatus) IsTerminal() bool { return s == StatusRevoked }

// AdminAction es una acción administrativa sobre una garantía.
type AdminAction string

const (
	ActionSuspend   AdminAction = "suspend"
	ActionUnsuspend AdminAction = "unsuspend"
	ActionRefund    AdminAction = "refund"
)

// AdminActions retorna el conjunto exacto de acciones legales para el estado.
// El UI/admin solo debe ofrecer estas; cualquier otra combinación es un bug.
func (s WarrantyStatus) AdminActions() []AdminAction {
	switch s {
	case StatusIssued:
		return []AdminAction{ActionSuspend, ActionRefund}
	case StatusIssuedUnassigned:
		return []AdminAction{ActionRefund}
	case StatusActive:
		return []AdminAction{ActionSuspend}
	case StatusSuspended:
		return []AdminAction{ActionUnsuspend}
	default:
		return nil
	}
}

// CanSuspend: issued y active pueden suspenderse.
func (s WarrantyStatus) CanSuspend() bool {
	return s == StatusIssued || s == StatusActive
}

// CanUnsuspend: solo suspended.
func (s WarrantyStatus) CanUnsuspend() bool { return s == StatusSuspended }

// CanRefund: solo issued / issued_unassigned. active NUNCA se reembolsa
// directamente (política fija del negocio).
func (s WarrantyStatus) CanRefund() bool {
	return s == StatusIssued || s == StatusIssuedUnassigned
}

// CanActivate: solo issued puede activarse.
func (s WarrantyStatus) CanActivate() bool { return s == StatusIssued }

// CanTransfer: solo active puede iniciar una transferencia de dueño.
func (s WarrantyStatus) CanTransfer() bool { return s == StatusActive }

// AfterUnsuspend retorna el estado resultante de un unsuspend.
// Comportamiento heredado: siempre vuelve a issued, el estado previo queda
// registrado solo en el old_value del evento.
func (s WarrantyStatus) AfterUnsuspend() WarrantyStatus {
	if s == StatusSuspended {
		return StatusIssued
	}
	return s
}

// MinReasonLength largo mínimo del motivo obligatorio en acciones admin.
const MinReasonLength = 10

// ValidReason valida el motivo libre exigido en cada transición admin.
// Cuenta runas, no bytes, para no penalizar motivos no-ASCII.
func ValidReason(reason string) bool {
	n := 0
	for range strings.TrimSpace(reason) {
		n++
		if n >= MinReasonLength {
			return true
		}
	}
	return false
}
