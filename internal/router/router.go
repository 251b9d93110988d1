package router

import (
	"net/http"

	"childcare-vaccines/internal/app"
	_ "childcare-vaccines/internal/docs"
	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/domain/diary"
	"childcare-vaccines/internal/domain/vaccines"
	"childcare-vaccines/internal/middleware"
	"childcare-vaccines/internal/platform/logger"
	"childcare-vaccines/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Log          logger.Logger

	// Opcional: si no viene, todo en memoria (modo dev / tests).
	Services *app.Services
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	svc := opts.Services
	if svc == nil {
		svc = app.DevServices(log)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(middleware.AuthOptions{Verifier: opts.AuthVerifier, Log: log}))
	r.Use(middleware.RequestLogger(log.With(map[string]any{"component": "http"})))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Rutas por módulo
	babies.RegisterRoutes(r, svc.Babies)
	vaccines.RegisterRoutes(r, svc.Vaccines, svc.Babies)
	diary.RegisterRoutes(r, svc.Diary, svc.Babies, svc.Location)

	return r
}
