// Package middleware resuelve la identidad de la familia y registra los requests.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/auth"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// DebugUserHeader solo se lee cuando no hay verifier.
const DebugUserHeader = "X-Debug-User-ID"

type claimsCtxKey struct{}

type AuthOptions struct {
	// Verifier nil => modo dev con DebugUserHeader.
	Verifier auth.AuthVerifier
	Log      logger.Logger
	Now      func() time.Time
}

// AuthContext deja las claims del padre o madre en el contexto. Un token
// ausente, inválido o vencido no corta el request: el handler responde 401.
func AuthContext(opts AuthOptions) func(http.Handler) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(map[string]any{"component": "auth"})
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				claims auth.Claims
				ok     bool
			)
			if opts.Verifier == nil {
				claims, ok = debugClaims(r)
			} else {
				claims, ok = tokenClaims(r, opts.Verifier, log, now())
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func debugClaims(r *http.Request) (auth.Claims, bool) {
	uid := strings.TrimSpace(r.Header.Get(DebugUserHeader))
	if uid == "" {
		return auth.Claims{}, false
	}
	return auth.Claims{UserID: uid}, true
}

func tokenClaims(r *http.Request, v auth.AuthVerifier, log logger.Logger, now time.Time) (auth.Claims, bool) {
	token, found := bearerToken(r.Header.Get("Authorization"))
	if !found {
		return auth.Claims{}, false
	}

	fields := map[string]any{"request_id": chimw.GetReqID(r.Context()), "path": r.URL.Path}

	claims, err := v.Verify(r.Context(), token)
	if err != nil {
		fields["err"] = err.Error()
		if errors.Is(err, auth.ErrInvalidToken) {
			log.Warn("rejected bearer token", fields)
		} else {
			log.Error("token verification failed", fields)
		}
		return auth.Claims{}, false
	}

	// el verifier puede no revisar exp; lo repetimos con nuestro reloj
	if !claims.ExpiresAt.IsZero() && !now.Before(claims.ExpiresAt) {
		fields["user_id"] = claims.UserID
		fields["expired_at"] = claims.ExpiresAt.UTC().Format(time.RFC3339)
		log.Warn("expired bearer token", fields)
		return auth.Claims{}, false
	}
	return claims, true
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey{}).(auth.Claims)
	return c, ok
}

// bearerToken: found=false si el header no es "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
