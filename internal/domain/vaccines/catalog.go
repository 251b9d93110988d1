package vaccines

// catalogEntry es una fila del esquema nacional de vacunación.
// key identifica el "slot" y forma parte del ID determinístico de la dosis;
// no debe cambiar aunque cambie el texto.
type catalogEntry struct {
	key         string
	vaccine     Vaccine
	ageInMonths int
	name        string
	description string
	optional    bool

	// rotavirusThird: solo se incluye según la política de 3ra dosis.
	rotavirusThird bool
}

const (
	descHexavalente = "Protege contra difteria, tosferina, tétanos, polio, Hib y Hepatitis B"
	descRotavirus   = "Previene diarreas graves causadas por rotavirus"
	descNeumococo   = "Protege contra infecciones por neumococo"
	descInfluenzaA  = "Protección anual contra influenza (temporada invernal)"
)

// catalog en orden de declaración; el orden desempata dosis de la misma edad.
var catalog = []catalogEntry{
	// Recién nacido
	{key: "bcg", vaccine: VaccineBCG, ageInMonths: 0, name: "BCG", description: "Protege contra formas graves de tuberculosis"},
	{key: "hepb", vaccine: VaccineHepatitisB, ageInMonths: 0, name: "Hepatitis B", description: "Previene la infección del virus de la Hepatitis B"},

	// 2 meses
	{key: "hexa-1", vaccine: VaccineHexavalente, ageInMonths: 2, name: "Hexavalente (1ra dosis)", description: descHexavalente},
	{key: "rota-1", vaccine: VaccineRotavirus, ageInMonths: 2, name: "Rotavirus (1ra dosis)", description: descRotavirus},
	{key: "neumo-1", vaccine: VaccineNeumococica, ageInMonths: 2, name: "Neumocócica Conjugada (1ra dosis)", description: descNeumococo},

	// 4 meses
	{key: "hexa-2", vaccine: VaccineHexavalente, ageInMonths: 4, name: "Hexavalente (2da dosis)", description: descHexavalente},
	{key: "rota-2", vaccine: VaccineRotavirus, ageInMonths: 4, name: "Rotavirus (2da dosis)", description: descRotavirus},
	{key: "neumo-2", vaccine: VaccineNeumococica, ageInMonths: 4, name: "Neumocócica Conjugada (2da dosis)", description: descNeumococo},

	// 6 meses
	{key: "hexa-3", vaccine: VaccineHexavalente, ageInMonths: 6, name: "Hexavalente (3ra dosis)", description: descHexavalente},
	{key: "flu-1", vaccine: VaccineInfluenza, ageInMonths: 6, name: "Influenza (1ra dosis)", description: "Protege contra la influenza estacional (a partir de 6 meses)"},
	{key: "rota-3", vaccine: VaccineRotavirus, ageInMonths: 6, name: "Rotavirus (3ra dosis)*", description: "Solo para ciertas marcas de rotavirus", optional: true, rotavirusThird: true},

	// 7 meses
	{key: "flu-2", vaccine: VaccineInfluenza, ageInMonths: 7, name: "Influenza (2da dosis)", description: "4 semanas después de la 1ra dosis de influenza"},

	// 12 meses
	{key: "srp-1", vaccine: VaccineSRP, ageInMonths: 12, name: "SRP (Triple Viral - 1ra dosis)", description: "Protege contra sarampión, rubéola y paperas"},
	{key: "neumo-r", vaccine: VaccineNeumococica, ageInMonths: 12, name: "Neumocócica Conjugada (Refuerzo)", description: "Refuerzo contra infecciones por neumococo"},
	{key: "flu-12", vaccine: VaccineInfluenza, ageInMonths: 12, name: "Influenza Anual", description: descInfluenzaA},

	// 18 meses
	{key: "hexa-r", vaccine: VaccineHexavalente, ageInMonths: 18, name: "Hexavalente (Refuerzo)", description: "Refuerzo contra difteria, tosferina, tétanos, polio, Hib y Hepatitis B"},
	// informativa: no se filtra por fecha de nacimiento
	{key: "srp-2", vaccine: VaccineSRP, ageInMonths: 18, name: "SRP (Triple Viral - 2da dosis)*", description: "Para nacidos después de julio 2020", optional: true},
	{key: "flu-18", vaccine: VaccineInfluenza, ageInMonths: 18, name: "Influenza Anual", description: descInfluenzaA},

	// 2, 3 y 4 años
	{key: "flu-24", vaccine: VaccineInfluenza, ageInMonths: 24, name: "Influenza Anual", description: descInfluenzaA},
	{key: "flu-36", vaccine: VaccineInfluenza, ageInMonths: 36, name: "Influenza Anual", description: descInfluenzaA},
	{key: "dpt-r", vaccine: VaccineDPT, ageInMonths: 48, name: "DPT (Refuerzo)", description: "Refuerzo contra difteria, tosferina y tétanos"},
	{key: "flu-48", vaccine: VaccineInfluenza, ageInMonths: 48, name: "Influenza Anual", description: descInfluenzaA},

	// 5 años
	{key: "covid-1", vaccine: VaccineCOVID19, ageInMonths: 60, name: "COVID-19 (1ra dosis)*", description: "A partir de 5 años - según disponibilidad", optional: true},
	{key: "covid-2", vaccine: VaccineCOVID19, ageInMonths: 61, name: "COVID-19 (2da dosis)*", description: "Según intervalo recomendado", optional: true},
	{key: "covid-3", vaccine: VaccineCOVID19, ageInMonths: 62, name: "COVID-19 (3ra dosis)*", description: "Refuerzo según intervalo recomendado", optional: true},
}

// FixedDoseCount es la cantidad de dosis sin contar la 3ra de rotavirus.
func FixedDoseCount() int {
	n := 0
	for _, e := range catalog {
		if !e.rotavirusThird {
			n++
		}
	}
	return n
}
