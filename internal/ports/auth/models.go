package auth

import "time"

// Claims es lo que el resto de la app sabe del usuario autenticado.
type Claims struct {
	UserID string
	Email  string

	// ExpiresAt es cero para identidades de desarrollo (X-Debug-User-ID).
	ExpiresAt time.Time
}
