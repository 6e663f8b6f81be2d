package answer

import (
	"fmt"
	"strings"

	"github.com/pitwall-ai/pitwall/engine/nlp"
)

// formatAnswer renders an outcome into a Spanish sentence. Not-found
// outcomes return their routine message verbatim; templates tolerate a
// missing team or country.
func formatAnswer(o outcome, queryType nlp.QueryType) string {
	if !o.found {
		if o.message != "" {
			return o.message
		}
		return "No se encontró información sobre tu pregunta."
	}

	switch queryType {
	case nlp.QueryPilotInfo:
		return pilotSentence(o, false)

	case nlp.QueryTeamInfo:
		pilotName := attrString(o.pilot.Attributes, "nombre")
		teamName := attrString(o.team.Attributes, "nombre_equipo")
		return fmt.Sprintf("%s corre para %s.", pilotName, teamName)

	case nlp.QueryMotorInfo:
		teamName := attrString(o.team.Attributes, "nombre_equipo")
		motorName := attrString(o.motor.Attributes, "fabricante")
		return fmt.Sprintf("%s utiliza motores %s.", teamName, motorName)

	case nlp.QueryCircuitInfo:
		circuitName := attrString(o.circuit.Attributes, "nombre_oficial")
		if o.country != nil {
			countryName := attrString(o.country.Attributes, "nombre")
			return fmt.Sprintf("El %s está ubicado en %s.", circuitName, countryName)
		}
		return fmt.Sprintf("Se encontró información sobre %s.", circuitName)

	case nlp.QuerySessionInfo:
		if year, ok := attrInt(o.metadata, "year"); ok && year != 0 {
			return fmt.Sprintf("Se encontraron %d sesiones para el año %d.", o.total, year)
		}
		return fmt.Sprintf("Se encontraron %d sesiones en la base de datos.", o.total)

	default:
		if o.pilot != nil {
			return pilotSentence(o, true)
		}
		if len(o.entities) > 0 {
			return fmt.Sprintf("Se encontraron %d entidades relacionadas con tu pregunta.", len(o.entities))
		}
		return "Se encontró información sobre tu consulta."
	}
}

// pilotSentence builds the driver description used by pilot and general
// answers. The general variant omits an unknown nationality instead of
// naming it.
func pilotSentence(o outcome, omitUnknownNationality bool) string {
	name := attrString(o.pilot.Attributes, "nombre")
	nationality := attrString(o.pilot.Attributes, "nacionalidad")
	if nationality == "" {
		nationality = "Desconocida"
	}
	number, _ := attrInt(o.pilot.Attributes, "numero_piloto")

	var b strings.Builder
	fmt.Fprintf(&b, "%s es un piloto de Fórmula 1", name)
	if !omitUnknownNationality || nationality != "Desconocida" {
		fmt.Fprintf(&b, " de nacionalidad %s", nationality)
	}
	if number != 0 {
		fmt.Fprintf(&b, " con el número %d", number)
	}
	if o.team != nil {
		fmt.Fprintf(&b, ". Actualmente corre para %s", attrString(o.team.Attributes, "nombre_equipo"))
	}
	b.WriteString(".")
	return b.String()
}
