package repository

import (
	"context"
	"time"
)

// User cuenta de cliente o admin. El flag IsAdmin habilita la consola
// /admin y el API key del CLI no pasa por aquí.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsAdmin      bool
	CreatedAt    time.Time
}

// FullName concatena nombre y apellido, tolerando vacíos.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// CreateUserInput datos para crear una cuenta (registro y seed).
type CreateUserInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsAdmin      bool
}

// UserRepository define operaciones sobre cuentas.
type UserRepository interface {
	// GetByEmail busca por email (case-insensitive). Retorna ErrNotFound
	// si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID busca por id.
	GetByID(ctx context.Context, id int64) (*User, error)

	// Create crea una cuenta. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, input CreateUserInput) (*User, error)
}
