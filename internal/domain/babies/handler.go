package babies

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"childcare-vaccines/internal/middleware"
	"childcare-vaccines/internal/platform/dates"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/babies", func(br chi.Router) {
		br.Post("/", createBabyHandler(svc))
		br.Get("/", listBabiesHandler(svc))

		br.Get("/{babyID}", getBabyHandler(svc))

		// Cambiar birth_date regenera el calendario de vacunas.
		br.Patch("/{babyID}", updateBabyHandler(svc))
	})
}

type createBabyRequest struct {
	Name                    string `json:"name"`
	BirthDate               string `json:"birth_date"` // YYYY-MM-DD
	Gender                  string `json:"gender" enums:"female,male,intersex,unspecified"`
	RotavirusThreeDoseBrand *bool  `json:"rotavirus_three_dose_brand,omitempty"`
}

type updateBabyRequest struct {
	Name                    *string `json:"name"`
	Gender                  *string `json:"gender"`
	BirthDate               *string `json:"birth_date"`
	RotavirusThreeDoseBrand *bool   `json:"rotavirus_three_dose_brand"`
}

type babyResponse struct {
	ID                      string    `json:"id"`
	OwnerUserID             string    `json:"owner_user_id"`
	Name                    string    `json:"name"`
	Gender                  Gender    `json:"gender"`
	GenderLabel             string    `json:"gender_label"`
	BirthDate               string    `json:"birth_date"`
	RotavirusThreeDoseBrand *bool     `json:"rotavirus_three_dose_brand,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// createBabyHandler godoc
// @Summary Registrar bebé
// @Description Crea el perfil del bebé. El calendario de vacunas se genera al consultarlo por primera vez.
// @Tags babies
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createBabyRequest true "Datos del bebé; birth_date YYYY-MM-DD"
// @Success 201 {object} babyResponse
// @Failure 400 {string} string "invalid json / birth_date inválida / gender inválido"
// @Failure 401 {string} string "unauthorized"
// @Router /babies [post]
func createBabyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createBabyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd, err := dates.Parse(req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		b, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:                    req.Name,
			BirthDate:               bd,
			Gender:                  req.Gender,
			RotavirusThreeDoseBrand: req.RotavirusThreeDoseBrand,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toBabyResponse(b))
	}
}

// listBabiesHandler godoc
// @Summary Listar mis bebés
// @Tags babies
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {array} babyResponse
// @Failure 401 {string} string "unauthorized"
// @Router /babies [get]
func listBabiesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]babyResponse, 0, len(items))
		for _, b := range items {
			out = append(out, toBabyResponse(b))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getBabyHandler godoc
// @Summary Perfil del bebé
// @Tags babies
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Success 200 {object} babyResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Router /babies/{babyID} [get]
func getBabyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := OwnedBaby(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toBabyResponse(b))
	}
}

// updateBabyHandler godoc
// @Summary Actualizar perfil del bebé
// @Description PATCH: campos ausentes no se tocan. Cambiar birth_date o rotavirus_three_dose_brand regenera el calendario de vacunas (se conservan las dosis aplicadas).
// @Tags babies
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Param payload body updateBabyRequest true "Campos a actualizar"
// @Success 200 {object} babyResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Failure 500 {string} string "internal error"
// @Router /babies/{babyID} [patch]
func updateBabyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := OwnedBaby(w, r, svc)
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateBabyRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateProfileInput{
			Name:                    req.Name,
			Gender:                  req.Gender,
			RotavirusThreeDoseBrand: req.RotavirusThreeDoseBrand,
		}
		if req.BirthDate != nil {
			bd, err := dates.Parse(*req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.BirthDate = &bd
		}

		updated, err := svc.UpdateProfile(r.Context(), current.ID, in)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "baby not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toBabyResponse(updated))
	}
}

// OwnedBaby resuelve {babyID} y exige que el usuario autenticado sea el dueño.
// Escribe la respuesta de error y devuelve false si no procede.
// Lo usan también los handlers de vaccines y diary.
func OwnedBaby(w http.ResponseWriter, r *http.Request, svc *Service) (Baby, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Baby{}, false
	}

	b, err := svc.GetByID(r.Context(), chi.URLParam(r, "babyID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "baby not found", http.StatusNotFound)
			return Baby{}, false
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return Baby{}, false
	}

	if b.OwnerUserID != claims.UserID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Baby{}, false
	}
	return b, true
}

func toBabyResponse(b Baby) babyResponse {
	return babyResponse{
		ID:                      b.ID,
		OwnerUserID:             b.OwnerUserID,
		Name:                    b.Name,
		Gender:                  b.Gender,
		GenderLabel:             b.Gender.Label(),
		BirthDate:               dates.Format(b.BirthDate),
		RotavirusThreeDoseBrand: b.RotavirusThreeDoseBrand,
		CreatedAt:               b.CreatedAt,
		UpdatedAt:               b.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
