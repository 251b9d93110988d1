package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid token")

// AuthVerifier valida un bearer token. Devuelve ErrInvalidToken (envuelto)
// cuando el token no sirve.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
