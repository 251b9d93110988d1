package vaccines

import (
	"time"

	"childcare-vaccines/internal/platform/dates"
)

// Vaccine identifica el biológico; el nombre de cada dosis vive en el catálogo.
// @Enum bcg, hepatitis_b, hexavalente, rotavirus, neumococica, influenza, srp, dpt, covid19
type Vaccine string

const (
	VaccineBCG         Vaccine = "bcg"
	VaccineHepatitisB  Vaccine = "hepatitis_b"
	VaccineHexavalente Vaccine = "hexavalente"
	VaccineRotavirus   Vaccine = "rotavirus"
	VaccineNeumococica Vaccine = "neumococica"
	VaccineInfluenza   Vaccine = "influenza"
	VaccineSRP         Vaccine = "srp"
	VaccineDPT         Vaccine = "dpt"
	VaccineCOVID19     Vaccine = "covid19"
)

var vaccineInfo = map[Vaccine]struct {
	label    string
	protects string
}{
	VaccineBCG:         {label: "BCG", protects: "Tuberculosis"},
	VaccineHepatitisB:  {label: "Hepatitis B", protects: "Hepatitis B"},
	VaccineHexavalente: {label: "Hexavalente", protects: "Difteria, tosferina, tétanos, polio, Hib y Hepatitis B"},
	VaccineRotavirus:   {label: "Rotavirus", protects: "Diarrea grave por rotavirus"},
	VaccineNeumococica: {label: "Neumocócica Conjugada", protects: "Neumococo"},
	VaccineInfluenza:   {label: "Influenza", protects: "Influenza estacional"},
	VaccineSRP:         {label: "SRP (Triple Viral)", protects: "Sarampión, rubéola y paperas"},
	VaccineDPT:         {label: "DPT", protects: "Difteria, tosferina y tétanos"},
	VaccineCOVID19:     {label: "COVID-19", protects: "COVID-19"},
}

func (v Vaccine) Valid() bool {
	_, ok := vaccineInfo[v]
	return ok
}

func (v Vaccine) Label() string { return vaccineInfo[v].label }

func (v Vaccine) Protects() string { return vaccineInfo[v].protects }

// Status es derivado, nunca se persiste.
type Status string

const (
	StatusPending Status = "pending"
	StatusDelayed Status = "delayed"
	StatusApplied Status = "applied"
)

var statusLabels = map[Status]string{
	StatusPending: "Pendiente",
	StatusDelayed: "Retrasada",
	StatusApplied: "Aplicada",
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusLabels[st]
	return st, ok
}

func (s Status) Label() string { return statusLabels[s] }

// Dose es una aplicación programada (o ya hecha) de una vacuna.
// Solo IsApplied, AppliedDate y RemindersSent cambian después de generarse.
type Dose struct {
	ID     string
	BabyID string

	Vaccine     Vaccine
	Name        string
	Description string

	AgeInMonths     int
	RecommendedDate time.Time

	// Optional marca dosis informativas (COVID-19, SRP 2da, Rotavirus 3ra).
	Optional bool

	IsApplied   bool
	AppliedDate *time.Time

	// RemindersSent registra cuándo se entregó cada categoría; una categoría
	// presente no vuelve a dispararse.
	RemindersSent map[ReminderCategory]time.Time
}

// Status: Applied si está aplicada; Delayed si la fecha recomendada ya pasó; si no, Pending.
func (d Dose) Status(today time.Time) Status {
	if d.IsApplied {
		return StatusApplied
	}
	if dates.DateOnly(d.RecommendedDate).Before(dates.DateOnly(today)) {
		return StatusDelayed
	}
	return StatusPending
}

// Clone copia los campos mutables para que los repos no compartan mapas ni punteros.
func (d Dose) Clone() Dose {
	out := d
	if d.AppliedDate != nil {
		ad := *d.AppliedDate
		out.AppliedDate = &ad
	}
	if d.RemindersSent != nil {
		out.RemindersSent = make(map[ReminderCategory]time.Time, len(d.RemindersSent))
		for k, v := range d.RemindersSent {
			out.RemindersSent[k] = v
		}
	}
	return out
}

type ReminderCategory string

const (
	ReminderThreeDaysBefore ReminderCategory = "T-3days"
	ReminderOneDayBefore    ReminderCategory = "T-1day"
	ReminderDueDay          ReminderCategory = "T-0"
	ReminderFollowUp        ReminderCategory = "T+3days-followup"
)

// ReminderCategories en orden de disparo.
var ReminderCategories = []ReminderCategory{
	ReminderThreeDaysBefore,
	ReminderOneDayBefore,
	ReminderDueDay,
	ReminderFollowUp,
}

var reminderInfo = map[ReminderCategory]struct {
	offsetDays int
	title      string
	body       string // %[1]s vacuna, %[2]s bebé
}{
	ReminderThreeDaysBefore: {offsetDays: -3, title: "📅 Vacuna próxima", body: "En 3 días: %[1]s para %[2]s"},
	ReminderOneDayBefore:    {offsetDays: -1, title: "⏰ Vacuna mañana", body: "Mañana: %[1]s para %[2]s"},
	ReminderDueDay:          {offsetDays: 0, title: "💉 ¡Hoy es el día!", body: "Hoy: %[1]s para %[2]s"},
	ReminderFollowUp:        {offsetDays: 3, title: "⚠️ Recordatorio de vacuna", body: "¿Ya aplicaste la vacuna %[1]s a %[2]s? Marca como completada."},
}

func (c ReminderCategory) Valid() bool {
	_, ok := reminderInfo[c]
	return ok
}

// OffsetDays respecto de la fecha recomendada.
func (c ReminderCategory) OffsetDays() int { return reminderInfo[c].offsetDays }

// ReminderEvent no se persiste; solo su entrega queda en Dose.RemindersSent.
type ReminderEvent struct {
	ID       string
	DoseID   string
	Category ReminderCategory
	FireAt   time.Time
	Title    string
	Body     string
}
