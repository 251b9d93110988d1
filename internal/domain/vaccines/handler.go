package vaccines

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"childcare-vaccines/internal/domain/babies"
	"childcare-vaccines/internal/platform/dates"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, babiesSvc *babies.Service) {
	r.Route("/babies/{babyID}/vaccines", func(vr chi.Router) {
		vr.Get("/", listDosesHandler(svc, babiesSvc))
		vr.Get("/calendar", calendarHandler(svc, babiesSvc))
		vr.Get("/summary", summaryHandler(svc, babiesSvc))

		vr.Post("/{doseID}/apply", markAppliedHandler(svc, babiesSvc))
		vr.Delete("/{doseID}/apply", unmarkAppliedHandler(svc, babiesSvc))
		vr.Get("/{doseID}/reminders", remindersHandler(svc, babiesSvc))

		// Rehace el esquema conservando las dosis aplicadas
		vr.Post("/regenerate", regenerateHandler(svc, babiesSvc))
	})
}

// doseResponse representa una dosis del esquema con su estado derivado.
type doseResponse struct {
	ID              string  `json:"id"`
	BabyID          string  `json:"baby_id"`
	Vaccine         Vaccine `json:"vaccine"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	AgeInMonths     int     `json:"age_in_months"`
	RecommendedDate string  `json:"recommended_date"`
	Optional        bool    `json:"optional"`
	IsApplied       bool    `json:"is_applied"`
	AppliedDate     *string `json:"applied_date,omitempty"`
	Status          Status  `json:"status" enums:"pending,delayed,applied"`
	StatusLabel     string  `json:"status_label"`
}

type markAppliedRequest struct {
	AppliedDate string `json:"applied_date"` // YYYY-MM-DD, opcional (hoy)
}

type calendarCellResponse struct {
	Date  *string        `json:"date"`
	Doses []doseResponse `json:"doses"`
}

type calendarResponse struct {
	Month    string                 `json:"month"`
	Label    string                 `json:"label"`
	Weekdays []string               `json:"weekdays"`
	Cells    []calendarCellResponse `json:"cells"`
}

type summaryResponse struct {
	Summary
	Progress float64       `json:"progress"`
	Next     *doseResponse `json:"next,omitempty"`
	DaysLeft *int          `json:"days_until_next,omitempty"`
}

type reminderResponse struct {
	ID       string           `json:"id"`
	Category ReminderCategory `json:"category" enums:"T-3days,T-1day,T-0,T+3days-followup"`
	FireAt   time.Time        `json:"fire_at"`
	Title    string           `json:"title"`
	Body     string           `json:"body"`
	Active   bool             `json:"active"`
	SentAt   *time.Time       `json:"sent_at,omitempty"`
}

// listDosesHandler godoc
// @Summary Esquema de vacunación del bebé
// @Description Devuelve las dosis del esquema nacional. Si el bebé aún no tiene esquema se genera. Filtros opcionales por estado derivado y por día.
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param babyID path string true "ID del bebé"
// @Param status query string false "applied | pending | delayed"
// @Param on query string false "Día (YYYY-MM-DD); solo dosis recomendadas ese día"
// @Success 200 {array} doseResponse
// @Failure 400 {string} string "status / on inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Router /babies/{babyID}/vaccines [get]
func listDosesHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		q := r.URL.Query()
		var (
			status Status
			on     *time.Time
		)
		if v := strings.TrimSpace(q.Get("status")); v != "" {
			st, ok := ParseStatus(strings.ToLower(v))
			if !ok {
				http.Error(w, "status must be applied, pending or delayed", http.StatusBadRequest)
				return
			}
			status = st
		}
		if v := strings.TrimSpace(q.Get("on")); v != "" {
			t, err := dates.Parse(v)
			if err != nil {
				http.Error(w, "on must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			on = &t
		}

		doses, err := svc.EnsureSchedule(r.Context(), b)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		today := svc.Today()
		if on != nil {
			doses = DosesOn(doses, *on)
		}
		switch status {
		case StatusApplied:
			doses = Applied(doses, today)
		case StatusPending:
			doses = Pending(doses, today)
		case StatusDelayed:
			doses = Delayed(doses, today)
		}

		out := make([]doseResponse, 0, len(doses))
		for _, d := range doses {
			out = append(out, toDoseResponse(d, today))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// calendarHandler godoc
// @Summary Vista mensual
// @Description Grilla del mes con semanas de lunes a domingo. Las celdas iniciales vacías tienen date null.
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Param month query string false "Mes YYYY-MM; por defecto el actual"
// @Success 200 {object} calendarResponse
// @Failure 400 {string} string "month inválido"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Router /babies/{babyID}/vaccines/calendar [get]
func calendarHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		today := svc.Today()
		anchor := today
		if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
			t, err := time.Parse("2006-01", v)
			if err != nil {
				http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
				return
			}
			anchor = t
		}

		doses, err := svc.EnsureSchedule(r.Context(), b)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		grid := MonthGrid(doses, anchor)
		cells := make([]calendarCellResponse, 0, len(grid))
		for _, c := range grid {
			cell := calendarCellResponse{Doses: make([]doseResponse, 0, len(c.Doses))}
			if c.Date != nil {
				s := dates.Format(*c.Date)
				cell.Date = &s
			}
			for _, d := range c.Doses {
				cell.Doses = append(cell.Doses, toDoseResponse(d, today))
			}
			cells = append(cells, cell)
		}

		writeJSON(w, http.StatusOK, calendarResponse{
			Month:    anchor.Format("2006-01"),
			Label:    MonthLabel(anchor),
			Weekdays: WeekdayHeader,
			Cells:    cells,
		})
	}
}

// summaryHandler godoc
// @Summary Resumen del esquema
// @Description Conteo por estado, progreso y próxima dosis pendiente (tarjeta del inicio).
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Success 200 {object} summaryResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Router /babies/{babyID}/vaccines/summary [get]
func summaryHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		doses, err := svc.EnsureSchedule(r.Context(), b)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		today := svc.Today()
		sum := Summarize(doses, today)
		out := summaryResponse{Summary: sum, Progress: sum.Progress()}
		if next, ok := Next(doses, today); ok {
			nr := toDoseResponse(next, today)
			days := DaysUntil(next, today)
			out.Next = &nr
			out.DaysLeft = &days
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// markAppliedHandler godoc
// @Summary Marcar dosis como aplicada
// @Description Registra la aplicación (se permite fecha pasada). Cancela los 4 recordatorios de la dosis. Marcar de nuevo sobrescribe la fecha.
// @Tags vaccines
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Param doseID path string true "ID de la dosis"
// @Param payload body markAppliedRequest false "applied_date YYYY-MM-DD; por defecto hoy"
// @Success 200 {object} doseResponse
// @Failure 400 {string} string "invalid json / applied_date inválida"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "dose not found"
// @Router /babies/{babyID}/vaccines/{doseID}/apply [post]
func markAppliedHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		var req markAppliedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var appliedOn time.Time
		if strings.TrimSpace(req.AppliedDate) != "" {
			t, err := dates.Parse(req.AppliedDate)
			if err != nil {
				http.Error(w, "applied_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			appliedOn = t
		}

		d, err := svc.MarkApplied(r.Context(), b.ID, chi.URLParam(r, "doseID"), appliedOn)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponse(d, svc.Today()))
	}
}

// unmarkAppliedHandler godoc
// @Summary Desmarcar dosis aplicada
// @Description Vuelve la dosis a pendiente/retrasada y reprograma sus 4 recordatorios.
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Param doseID path string true "ID de la dosis"
// @Success 200 {object} doseResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "dose not found"
// @Failure 409 {string} string "dose is not applied"
// @Router /babies/{babyID}/vaccines/{doseID}/apply [delete]
func unmarkAppliedHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		d, err := svc.UnmarkApplied(r.Context(), b.ID, chi.URLParam(r, "doseID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoseResponse(d, svc.Today()))
	}
}

// remindersHandler godoc
// @Summary Recordatorios de una dosis
// @Description Los 4 recordatorios planificados. active=false si la dosis ya está aplicada.
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Param doseID path string true "ID de la dosis"
// @Success 200 {array} reminderResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "dose not found"
// @Router /babies/{babyID}/vaccines/{doseID}/reminders [get]
func remindersHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		d, events, err := svc.PlannedReminders(r.Context(), b.ID, chi.URLParam(r, "doseID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]reminderResponse, 0, len(events))
		for _, ev := range events {
			rr := reminderResponse{
				ID:       ev.ID,
				Category: ev.Category,
				FireAt:   ev.FireAt,
				Title:    ev.Title,
				Body:     ev.Body,
				Active:   !d.IsApplied,
			}
			if at, ok := d.RemindersSent[ev.Category]; ok {
				sentAt := at
				rr.SentAt = &sentAt
			}
			out = append(out, rr)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// regenerateHandler godoc
// @Summary Regenerar esquema
// @Description Cancela los recordatorios actuales, recalcula el esquema y conserva las dosis aplicadas.
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param babyID path string true "ID del bebé"
// @Success 200 {array} doseResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "baby not found"
// @Router /babies/{babyID}/vaccines/regenerate [post]
func regenerateHandler(svc *Service, babiesSvc *babies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := babies.OwnedBaby(w, r, babiesSvc)
		if !ok {
			return
		}

		doses, err := svc.Regenerate(r.Context(), b)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		today := svc.Today()
		out := make([]doseResponse, 0, len(doses))
		for _, d := range doses {
			out = append(out, toDoseResponse(d, today))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var nf *NotFoundError
	switch {
	case errors.As(err, &nf):
		http.Error(w, nf.Kind+" not found", http.StatusNotFound)
	case errors.Is(err, ErrNotApplied):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toDoseResponse(d Dose, today time.Time) doseResponse {
	st := d.Status(today)
	out := doseResponse{
		ID:              d.ID,
		BabyID:          d.BabyID,
		Vaccine:         d.Vaccine,
		Name:            d.Name,
		Description:     d.Description,
		AgeInMonths:     d.AgeInMonths,
		RecommendedDate: dates.Format(d.RecommendedDate),
		Optional:        d.Optional,
		IsApplied:       d.IsApplied,
		Status:          st,
		StatusLabel:     st.Label(),
	}
	if d.AppliedDate != nil {
		s := dates.Format(*d.AppliedDate)
		out.AppliedDate = &s
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
