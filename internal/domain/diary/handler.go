package diary

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, babiesSvc *babies.Service, loc *time.Location) {
	r.Route("/babies/{babyID}/diary", func(dr chi.Router) {
		dr.Post("/", createEntryHandler(svc, babiesSvc))
		dr.Get("/", listEntriesHandler(svc, babiesSvc))
		dr.Get("/alerts", alertsHandler(svc, babiesSvc, loc))

		// Anular registro (no se borra)
		dr.Post("/{entryID}/void", voidEntryHandler(svc, babiesSvc))
	})
}

type createEntryRequest struct {
	Code       string   `json:"code" enums:"fiebre,tos,congestion,diarrea,vomito,irritable,sarpullido,dolor,alimentacion,sueno,panal,bano"`
	OccurredAt string   `json:"occurred_at"` // RFC3339, opcional (ahora)
	Value      *float64 `json:"value"`       // solo hábitos
	Notes      string   `json:"notes"`
}

type entryResponse struct {
	ID         string    `json:"id"`
	BabyID     string    `json:"baby_id"`
	Kind       Kind      `json:"kind"`
	Code       Code      `json:"code"`
	Label      string    `json:"label"`
	OccurredAt time.Time `json:"occurred_at"`
	RecordedAt time.Time `json:"recorded_at"`
	Value      *float64  `json:"value,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	Notes      string    `json:"notes"`
	Status     Status    `json:"status"`
}

type alertResponse struct {
	Code     Code     `json:"code"`
	Label    string   `json:"label"`
	Days     int      `json:"days"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// createEntryHandler godoc
// @Summary Registrar síntoma o hábito
// @Description Registra un síntoma (sin valor) o un hábito (value obligatorio, en la unidad del hábito).
// @Tags diary
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param babyID path string true "ID del bebé"
// @Param payload body createEntryRequest true "Registro; occurred_at RFC3339"
// @Success 201 {object} entryResponse
// @Failure 400 {string} string "invalid json / occurred_at inválido / código inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Router /babies/{babyID}/diary [post]
func createEntryHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}
		claims, _ := middleware.GetClaims(r.Context())

		var req createEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var occurred time.Time
		if v := strings.TrimSpace(req.OccurredAt); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "occurred_at must be RFC3339", http.StatusBadRequest)
				return
			}
			occurred = t
		}

		e, err := svc.Create(r.Context(), b.ID, claims.UserID, CreateInput{
			Code:       req.Code,
			OccurredAt: occurred,
			Value:      req.Value,
			Notes:      req.Notes,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toEntryResponse(e))
	}
}

// listEntriesHandler godoc
// @Summary Listar diario del bebé
// @Description Lista registros del diario, más recientes primero. Filtros por tipo, códigos y rango de fechas.
// @Tags diary
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Param kind query string false "symptom | habit"
// @Param codes query string false "Lista CSV de códigos (ej: fiebre,tos)"
// @Param from query string false "occurred_at mínimo (RFC3339)"
// @Param to query string false "occurred_at máximo (RFC3339)"
// @Param limit query int false "Máximo (1-200). Por defecto 50"
// @Param include_voided query bool false "Incluir anulados"
// @Success 200 {array} entryResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Router /babies/{babyID}/diary [get]
func listEntriesHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByBaby(r.Context(), b.ID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// alertsHandler godoc
// @Summary Alertas por síntomas recurrentes
// @Description Síntomas registrados en días consecutivos hasta hoy que superan el umbral de cada regla.
// @Tags diary
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Success 200 {array} alertResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Router /babies/{babyID}/diary/alerts [get]
func alertsHandler(svc *Service, babiesSvc *babies.Service, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		alerts, err := svc.RecentAlerts(r.Context(), b.ID, loc)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]alertResponse, 0, len(alerts))
		for _, a := range alerts {
			out = append(out, alertResponse{
				Code:     a.Code,
				Label:    a.Code.Label(),
				Days:     a.Days,
				Severity: a.Severity,
				Message:  a.Message,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// voidEntryHandler godoc
// @Summary Anular (void) un registro
// @Tags diary
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Param entryID path string true "ID del registro"
// @Success 200 {object} entryResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "entry not found"
// @Failure 500 {string} string "internal error"
// @Router /babies/{babyID}/diary/{entryID}/void [post]
func voidEntryHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		entryID := chi.URLParam(r, "entryID")

		// El registro existe y pertenece al bebé
		e, err := svc.GetByID(r.Context(), entryID)
		if err != nil || e.BabyID != b.ID {
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}

		updated, err := svc.Void(r.Context(), entryID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "entry not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toEntryResponse(updated))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	filter := ListFilter{Limit: limit}

	switch k := Kind(strings.TrimSpace(q.Get("kind"))); k {
	case "":
	case KindSymptom, KindHabit:
		filter.Kind = k
	default:
		return ListFilter{}, errors.New("kind must be symptom or habit")
	}

	// codes=fiebre,tos
	if v := strings.TrimSpace(q.Get("codes")); v != "" {
		for _, p := range strings.Split(v, ",") {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			c, ok := ParseCode(p)
			if !ok {
				return ListFilter{}, errors.New("unknown code " + p)
			}
			filter.Codes = append(filter.Codes, c)
		}
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	filter.IncludeVoided, _ = strconv.ParseBool(q.Get("include_voided"))
	return filter, nil
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:         e.ID,
		BabyID:     e.BabyID,
		Kind:       e.Kind,
		Code:       e.Code,
		Label:      e.Code.Label(),
		OccurredAt: e.OccurredAt,
		RecordedAt: e.RecordedAt,
		Value:      e.Value,
		Unit:       e.Unit,
		Notes:      e.Notes,
		Status:     e.Status,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
