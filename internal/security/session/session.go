// Package session emite y valida los JWT de sesión (HS256) que viajan
// en la cookie de sesión o como Bearer token.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indica un token malformado, vencido o con firma inválida.
var ErrInvalidToken = errors.New("invalid session token")

// Claims es la identidad embebida en el token de sesión.
type Claims struct {
	UserID  int64
	Email   string
	IsAdmin bool
	Expires time.Time
}

// Manager firma y valida tokens de sesión.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewManager crea un manager. TTL cero usa 24h.
func NewManager(secret, issuer string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL retorna la vida útil configurada de una sesión.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue firma un token de sesión para el usuario.
func (m *Manager) Issue(userID int64, email string, isAdmin bool) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   m.issuer,
		"sub":   strconv.FormatInt(userID, 10),
		"email": email,
		"adm":   isAdmin,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	})
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse valida firma, emisor y vencimiento, y extrae los claims.
func (m *Manager) Parse(raw string) (*Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}
	email, _ := mc["email"].(string)
	isAdmin, _ := mc["adm"].(bool)

	var exp time.Time
	if v, err := mc.GetExpirationTime(); err == nil && v != nil {
		exp = v.Time
	}
	return &Claims{UserID: userID, Email: email, IsAdmin: isAdmin, Expires: exp}, nil
}
