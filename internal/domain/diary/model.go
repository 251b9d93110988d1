package diary

import "time"

type Kind string

const (
	KindSymptom Kind = "symptom"
	KindHabit   Kind = "habit"
)

// Code identifica un síntoma o un hábito; la tabla dice a qué Kind pertenece.
type Code string

const (
	SymptomFiebre     Code = "fiebre"
	SymptomTos        Code = "tos"
	SymptomCongestion Code = "congestion"
	SymptomDiarrea    Code = "diarrea"
	SymptomVomito     Code = "vomito"
	SymptomIrritable  Code = "irritable"
	SymptomSarpullido Code = "sarpullido"
	SymptomDolor      Code = "dolor"

	HabitAlimentacion Code = "alimentacion"
	HabitSueno        Code = "sueno"
	HabitPanal        Code = "panal"
	HabitBano         Code = "bano"
)

var codeInfo = map[Code]struct {
	kind  Kind
	label string
	unit  string
}{
	SymptomFiebre:     {kind: KindSymptom, label: "Fiebre"},
	SymptomTos:        {kind: KindSymptom, label: "Tos"},
	SymptomCongestion: {kind: KindSymptom, label: "Congestión"},
	SymptomDiarrea:    {kind: KindSymptom, label: "Diarrea"},
	SymptomVomito:     {kind: KindSymptom, label: "Vómito"},
	SymptomIrritable:  {kind: KindSymptom, label: "Irritable"},
	SymptomSarpullido: {kind: KindSymptom, label: "Sarpullido"},
	SymptomDolor:      {kind: KindSymptom, label: "Dolor"},

	HabitAlimentacion: {kind: KindHabit, label: "Alimentación", unit: "ml"},
	HabitSueno:        {kind: KindHabit, label: "Sueño", unit: "horas"},
	HabitPanal:        {kind: KindHabit, label: "Pañal", unit: "veces"},
	HabitBano:         {kind: KindHabit, label: "Baño", unit: "min"},
}

// aliases con acentos/eñe como los mandaba la app.
var codeAliases = map[string]Code{
	"sueño":      HabitSueno,
	"congestión": SymptomCongestion,
	"vómito":     SymptomVomito,
	"baño":       HabitBano,
	"pañal":      HabitPanal,
}

func ParseCode(s string) (Code, bool) {
	if c, ok := codeAliases[s]; ok {
		return c, true
	}
	c := Code(s)
	_, ok := codeInfo[c]
	return c, ok
}

func (c Code) Kind() Kind { return codeInfo[c].kind }

func (c Code) Label() string { return codeInfo[c].label }

func (c Code) Unit() string { return codeInfo[c].unit }

type Status string

const (
	StatusActive Status = "active"
	StatusVoided Status = "voided"
)

// Entry es un registro del diario. Value solo aplica a hábitos.
type Entry struct {
	ID     string
	BabyID string

	Kind Kind
	Code Code

	OccurredAt time.Time
	RecordedAt time.Time

	Value *float64
	Unit  string
	Notes string

	AuthorUserID string
	Status       Status
}
