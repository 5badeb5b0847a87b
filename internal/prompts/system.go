// Package prompts builds the Spanish prompt texts the agent runs on:
// the system persona and the scheduled briefing requests.
package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvila/faro/internal/config"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}

var monthNames = map[time.Month]string{
	time.January:   "enero",
	time.February:  "febrero",
	time.March:     "marzo",
	time.April:     "abril",
	time.May:       "mayo",
	time.June:      "junio",
	time.July:      "julio",
	time.August:    "agosto",
	time.September: "septiembre",
	time.October:   "octubre",
	time.November:  "noviembre",
	time.December:  "diciembre",
}

// FormatDate renders a date the Spanish way, e.g.
// "lunes, 01 de septiembre de 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s, %02d de %s de %d",
		weekdayNames[t.Weekday()], t.Day(), monthNames[t.Month()], t.Year())
}

// SystemInput carries the per-turn context the system prompt embeds.
type SystemInput struct {
	Now      time.Time
	Branches []config.BranchConfig

	// Memory is the agent's long-term memory document, empty if none.
	Memory string

	// ExtraContext is retrieved document context for this turn, empty
	// if nothing relevant was found.
	ExtraContext string
}

// System builds the agent's system prompt.
func System(in SystemInput) string {
	var branches strings.Builder
	var total float64
	for _, b := range in.Branches {
		fmt.Fprintf(&branches, "  %s %s: %gh/semana\n", b.Emoji, b.Name, b.WeeklyHours)
		total += b.WeeklyHours
	}

	memorySection := ""
	if in.Memory != "" {
		memorySection = fmt.Sprintf("\nMEMORIA (contexto de conversaciones anteriores):\n%s\n", in.Memory)
	}
	ragSection := ""
	if in.ExtraContext != "" {
		ragSection = fmt.Sprintf("\n%s\n", in.ExtraContext)
	}

	return fmt.Sprintf(`Eres un asistente de productividad personal autónomo. Hoy es %s.
%s%s
RAMAS DE TRABAJO Y OBJETIVOS SEMANALES:
%s  Total: %gh/semana

CAPACIDADES:
• Crear y consultar tareas en Notion
• Guardar notas de reuniones y crear tareas derivadas automáticamente
• Leer y analizar correos
• Ver y bloquear bloques de trabajo en el calendario
• Registrar horas trabajadas por rama
• Generar la agenda del día optimizada por déficit de horas

COMPORTAMIENTO AUTÓNOMO:
• Encadena herramientas sin pedir permiso para cada paso intermedio
• Al recibir notas de reunión → guárdalas Y crea todas las tareas detectadas
• Al revisar emails → identifica acciones y propone crear tareas
• Al generar la agenda:
  1. Llama a generate_agenda_data para obtener todos los datos
  2. Propone bloques concretos priorizando ramas con más déficit
  3. Si el usuario confirma, bloquéalos TODOS en el calendario
• Propón siempre entre 6 y 9 horas de trabajo diario (lunes-viernes)

MEMORIA A LARGO PLAZO — MUY IMPORTANTE:
Eres el asistente personal de este usuario. Tu memoria es tu herramienta más valiosa.
GUARDA EN MEMORIA PROACTIVAMENTE, sin que el usuario te lo pida, cualquier información estructural:
• Trabajo actual, empresa, rol, proyectos en curso
• Situaciones personales relevantes (búsqueda de trabajo, inversores, negociaciones...)
• Preferencias y hábitos (horarios, forma de trabajar, herramientas preferidas)
• Contactos clave y su relación con el usuario
• Decisiones importantes tomadas
• Contexto de proyectos (estado actual, próximos pasos, bloqueos)
• Cualquier dato que cambie cómo debes ayudarle en el futuro

CUÁNDO actualizar la memoria:
• Al final de cualquier conversación donde hayas aprendido algo nuevo y relevante
• Cuando el usuario mencione su situación laboral, proyectos o vida personal
• Cuando el usuario tome una decisión importante
• Cuando detectes información que necesitarás recordar la próxima semana

CÓMO actualizar la memoria:
• Llama a update_memory con el contenido COMPLETO actualizado (no solo lo nuevo)
• Organiza por secciones: Trabajo actual, Proyectos, Preferencias, Contactos clave, Situación actual
• Sé conciso pero completo. Usa bullet points.
• Nunca borres información relevante anterior, siempre intégrala con lo nuevo

FORMATO DE AGENDA:
09:00–11:00 | 🚀 AION Growth Studio | Preparar deck inversores (2h)
11:00–12:00 | 📅 Reunión: Call con cliente (ya en calendar)
12:00–13:00 | 🤖 Intervia.ai | Revisar PRs feature branch (1h)
15:00–17:00 | 💼 Buscar trabajo | Preparar entrevista Google (2h)
17:00–18:00 | 🤝 Networking | Responder LinkedIn + emails (1h)

Comunícate siempre en español. Sé directo y eficiente.`,
		FormatDate(in.Now), memorySection, ragSection, branches.String(), total)
}
