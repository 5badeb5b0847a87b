package prompts

// DailyBriefing is the request the scheduler sends the agent every
// morning. It walks the model through the tools to call and the
// sections the briefing must have.
const DailyBriefing = `Genera el briefing diario completo. Sé directo y estructurado. Usa emojis para separar secciones.

Pasos que debes seguir (usa las herramientas en este orden):
1. Llama a generate_agenda_data para obtener agenda, tareas pendientes y déficit de horas
2. Llama a web_search con la query: "most important news today AI robotics energy business economy startups" para obtener las 3 noticias más relevantes
3. Llama a read_emails (unread_only=true, max_emails=20) para revisar newsletters y emails importantes

Con todos los datos, genera el briefing con estas secciones:

📅 AGENDA DE HOY
Eventos del día y bloques de trabajo recomendados priorizando las ramas con más déficit de horas.

📰 TOP 3 NOTICIAS
Las 3 noticias más importantes que combinen tech/IA/robótica/energía + empresa + economía.
Por cada noticia: titular, una frase de contexto, y el link directo al medio que haya cubierto la noticia con más datos y rigor (prioriza FT, Reuters, Bloomberg, MIT Tech Review, The Economist, Wired, El País Economía o similar según el tema).

📧 EMAILS IMPORTANTES
Newsletters relevantes o emails sin contestar que merezcan atención hoy.

⚠️ RECORDATORIOS
- Ramas con déficit alto de horas esta semana
- Tareas que lleven mucho tiempo sin moverse (basándote en las tareas pendientes)
- Cualquier urgencia que detectes

💡 FOCO DEL DÍA
Una sola acción concreta que más impacto tendría hoy.`

// WeeklySummary is the Friday-evening request.
const WeeklySummary = `Genera el resumen semanal de productividad. Sé directo y estructurado.

Pasos que debes seguir:
1. Llama a generate_agenda_data para obtener horas trabajadas esta semana, déficit por rama y tareas
2. Llama a get_tasks con status=Done para ver qué se ha completado

Con los datos, genera el resumen con estas secciones:

📊 HORAS ESTA SEMANA
Horas reales vs objetivo por rama. Porcentaje de cumplimiento. Total semanal.

✅ COMPLETADO ESTA SEMANA
Tareas cerradas. Si no hay datos claros, menciona los avances más relevantes detectados.

🔴 DÉFICIT ACUMULADO
Las ramas con más horas por recuperar y qué significa para la próxima semana.

📋 PRIORIDADES PRÓXIMA SEMANA
Top 5 tareas más importantes para la próxima semana basándote en las pendientes.

🏆 HIGHLIGHT
El logro más destacable de la semana o una reflexión útil sobre el ritmo de trabajo.`

// Headers sent before each scheduled briefing.
const (
	DailyBriefingHeader  = "🌅 Buenos días — aquí tu briefing diario:"
	WeeklySummaryHeader  = "📊 Resumen semanal — esto es lo que ha pasado esta semana:"
	ManualBriefingHeader = "🌅 Briefing diario:"
	ManualWeeklyHeader   = "📊 Resumen semanal:"
)
