package tools

import (
	"context"
	"fmt"

	"github.com/dvila/faro/internal/notion"
)

func (r *Registry) branchEnum() []string {
	names := make([]string, 0, len(r.deps.Branches))
	for _, b := range r.deps.Branches {
		names = append(names, b.Name)
	}
	return names
}

func (r *Registry) registerNotionTools() {
	branchEnum := r.branchEnum()

	r.Register(&Tool{
		Name: "create_task",
		Description: "Crea una tarea en Notion. Úsalo cuando el usuario quiera añadir " +
			"una tarea, to-do o acción a realizar. También úsalo automáticamente " +
			"cuando detectes acciones en notas de reuniones o en correos.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string", "description": "Título descriptivo de la tarea"},
				"branch": map[string]any{
					"type": "string", "enum": branchEnum,
					"description": "Rama de trabajo a la que pertenece la tarea",
				},
				"priority": map[string]any{
					"type": "string", "enum": []string{"High", "Medium", "Low"},
					"description": "Prioridad de la tarea",
				},
				"estimated_hours": map[string]any{
					"type": "number", "description": "Horas estimadas para completar la tarea",
				},
				"due_date": map[string]any{
					"type": "string", "description": "Fecha límite en formato YYYY-MM-DD (opcional)",
				},
				"notes": map[string]any{
					"type": "string", "description": "Notas adicionales (opcional)",
				},
			},
			"required": []string{"title", "branch", "priority", "estimated_hours"},
		},
		Handler: r.handleCreateTask,
	})

	r.Register(&Tool{
		Name:        "get_tasks",
		Description: "Obtiene las tareas de Notion, opcionalmente filtradas por rama y/o estado.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"branch": map[string]any{
					"type": "string", "enum": branchEnum,
					"description": "Filtrar por rama (opcional, omitir para todas)",
				},
				"status": map[string]any{
					"type": "string", "enum": []string{"Pending", "In Progress", "Done"},
					"description": "Filtrar por estado (opcional)",
				},
			},
			"required": []string{},
		},
		Handler: r.handleGetTasks,
	})

	r.Register(&Tool{
		Name: "save_meeting_notes",
		Description: "Guarda las notas de una reunión en Notion. Después de guardarlas, " +
			"extrae automáticamente las acciones y crea las tareas correspondientes.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":     map[string]any{"type": "string", "description": "Título o nombre de la reunión"},
				"attendees": map[string]any{"type": "string", "description": "Participantes separados por comas"},
				"notes":     map[string]any{"type": "string", "description": "Contenido completo de las notas"},
				"action_items": map[string]any{
					"type": "string", "description": "Acciones concretas derivadas de la reunión (opcional)",
				},
			},
			"required": []string{"title", "attendees", "notes"},
		},
		Handler: r.handleSaveMeetingNotes,
	})

	r.Register(&Tool{
		Name:        "log_time",
		Description: "Registra horas trabajadas en una rama para el seguimiento semanal.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"branch": map[string]any{
					"type": "string", "enum": branchEnum, "description": "Rama de trabajo",
				},
				"hours": map[string]any{"type": "number", "description": "Horas trabajadas"},
				"task_description": map[string]any{
					"type": "string", "description": "Descripción de lo realizado (opcional)",
				},
			},
			"required": []string{"branch", "hours"},
		},
		Handler: r.handleLogTime,
	})

	r.Register(&Tool{
		Name: "save_document",
		Description: "Guarda un documento, resumen o nota larga en la base de datos de Notion. " +
			"Úsalo para guardar información extensa sobre proyectos, investigaciones, " +
			"transcripciones de audio, resúmenes de emails o cualquier contexto importante.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":   map[string]any{"type": "string", "description": "Título del documento"},
				"content": map[string]any{"type": "string", "description": "Contenido completo del documento"},
				"tags": map[string]any{
					"type": "array", "items": map[string]any{"type": "string"},
					"description": "Etiquetas para categorizar (ej: ['inversores', 'AION', 'strategy'])",
				},
				"source": map[string]any{
					"type": "string", "enum": []string{"Manual", "Email", "Reunión", "Audio", "Investigación"},
					"description": "Origen del documento",
				},
			},
			"required": []string{"title", "content"},
		},
		Handler: r.handleSaveDocument,
	})

	r.Register(&Tool{
		Name:        "search_documents",
		Description: "Busca documentos guardados por título o etiquetas.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "Texto a buscar en el título"},
				"tags": map[string]any{
					"type": "array", "items": map[string]any{"type": "string"},
					"description": "Filtrar por etiquetas",
				},
			},
			"required": []string{},
		},
		Handler: r.handleSearchDocuments,
	})

	r.Register(&Tool{
		Name:        "get_document_content",
		Description: "Obtiene el contenido completo de un documento por su ID.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"doc_id": map[string]any{"type": "string", "description": "ID del documento obtenido con search_documents"},
			},
			"required": []string{"doc_id"},
		},
		Handler: r.handleGetDocumentContent,
	})

	contactTypes := []string{"Conexión", "Mensaje", "Comentario", "Reunión", "Café virtual", "Seguimiento"}
	contactStates := []string{"Activo", "Frío", "Convertido"}

	r.Register(&Tool{
		Name:        "add_contact",
		Description: "Añade un contacto de LinkedIn al registro de networking en Notion.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"persona": map[string]any{"type": "string", "description": "Nombre completo del contacto"},
				"empresa": map[string]any{"type": "string", "description": "Empresa donde trabaja"},
				"tipo_contacto": map[string]any{
					"type": "string", "enum": contactTypes, "description": "Tipo de contacto realizado",
				},
				"ultimo_contacto":        map[string]any{"type": "string", "description": "Fecha del último contacto YYYY-MM-DD (por defecto hoy)"},
				"proximo_contacto":       map[string]any{"type": "string", "description": "Qué hacer en el próximo contacto"},
				"fecha_proximo_contacto": map[string]any{"type": "string", "description": "Cuándo hacer el próximo contacto YYYY-MM-DD"},
			},
			"required": []string{"persona"},
		},
		Handler: r.handleAddContact,
	})

	r.Register(&Tool{
		Name: "get_contacts",
		Description: "Obtiene contactos de LinkedIn del registro de networking. " +
			"Úsalo para ver quién necesita seguimiento o listar contactos activos.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"estado": map[string]any{
					"type": "string", "enum": contactStates, "description": "Filtrar por estado (opcional)",
				},
				"dias_sin_contacto": map[string]any{
					"type": "integer", "description": "Devuelve contactos sin actividad en los últimos N días (opcional)",
				},
			},
			"required": []string{},
		},
		Handler: r.handleGetContacts,
	})

	r.Register(&Tool{
		Name: "update_contact",
		Description: "Actualiza un contacto de LinkedIn: registra un nuevo contacto, " +
			"cambia el próximo seguimiento o su estado. " +
			"Usa get_contacts primero para obtener el ID del contacto.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"contact_id": map[string]any{"type": "string", "description": "ID del contacto obtenido con get_contacts"},
				"tipo_contacto": map[string]any{
					"type": "string", "enum": contactTypes, "description": "Tipo del contacto realizado",
				},
				"ultimo_contacto":        map[string]any{"type": "string", "description": "Fecha del contacto YYYY-MM-DD (por defecto hoy)"},
				"proximo_contacto":       map[string]any{"type": "string", "description": "Qué hacer en el próximo contacto"},
				"fecha_proximo_contacto": map[string]any{"type": "string", "description": "Cuándo hacer el próximo contacto YYYY-MM-DD"},
				"estado": map[string]any{
					"type": "string", "enum": contactStates, "description": "Nuevo estado del contacto",
				},
			},
			"required": []string{"contact_id"},
		},
		Handler: r.handleUpdateContact,
	})
}

func (r *Registry) handleCreateTask(ctx context.Context, args map[string]any) (string, error) {
	in := notion.CreateTaskInput{
		Title:          stringArg(args, "title"),
		Branch:         stringArg(args, "branch"),
		Priority:       stringArg(args, "priority"),
		EstimatedHours: floatArg(args, "estimated_hours"),
		DueDate:        stringArg(args, "due_date"),
		Notes:          stringArg(args, "notes"),
	}
	if err := r.deps.Notion.CreateTask(ctx, in); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Tarea '%s' creada en '%s' (prioridad: %s, ~%gh)",
		in.Title, in.Branch, in.Priority, in.EstimatedHours), nil
}

func (r *Registry) handleGetTasks(ctx context.Context, args map[string]any) (string, error) {
	tasks, err := r.deps.Notion.Tasks(ctx, stringArg(args, "branch"), stringArg(args, "status"))
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "No se encontraron tareas con esos filtros.", nil
	}
	return toJSON(tasks)
}

func (r *Registry) handleSaveMeetingNotes(ctx context.Context, args map[string]any) (string, error) {
	in := notion.MeetingNotesInput{
		Title:       stringArg(args, "title"),
		Attendees:   stringArg(args, "attendees"),
		Notes:       stringArg(args, "notes"),
		ActionItems: stringArg(args, "action_items"),
	}
	if err := r.deps.Notion.SaveMeetingNotes(ctx, in); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Notas de '%s' guardadas en Notion", in.Title), nil
}

func (r *Registry) handleLogTime(ctx context.Context, args map[string]any) (string, error) {
	branch := stringArg(args, "branch")
	hours := floatArg(args, "hours")
	if err := r.deps.Notion.LogTime(ctx, branch, hours, stringArg(args, "task_description")); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ %gh registradas en '%s'", hours, branch), nil
}

func (r *Registry) handleSaveDocument(ctx context.Context, args map[string]any) (string, error) {
	title := stringArg(args, "title")
	err := r.deps.Notion.SaveDocument(ctx, title, stringArg(args, "content"),
		stringsArg(args, "tags"), stringArg(args, "source"))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Documento '%s' guardado en Notion.", title), nil
}

func (r *Registry) handleSearchDocuments(ctx context.Context, args map[string]any) (string, error) {
	docs, err := r.deps.Notion.SearchDocuments(ctx, stringArg(args, "query"), stringsArg(args, "tags"))
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "No se encontraron documentos.", nil
	}
	return toJSON(docs)
}

func (r *Registry) handleGetDocumentContent(ctx context.Context, args map[string]any) (string, error) {
	return r.deps.Notion.DocumentContent(ctx, stringArg(args, "doc_id"))
}

func (r *Registry) handleAddContact(ctx context.Context, args map[string]any) (string, error) {
	in := notion.AddContactInput{
		Persona:              stringArg(args, "persona"),
		Empresa:              stringArg(args, "empresa"),
		TipoContacto:         stringArg(args, "tipo_contacto"),
		UltimoContacto:       stringArg(args, "ultimo_contacto"),
		ProximoContacto:      stringArg(args, "proximo_contacto"),
		FechaProximoContacto: stringArg(args, "fecha_proximo_contacto"),
	}
	if err := r.deps.Notion.AddContact(ctx, in); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Contacto '%s' (%s) añadido.", in.Persona, in.Empresa), nil
}

func (r *Registry) handleGetContacts(ctx context.Context, args map[string]any) (string, error) {
	contacts, err := r.deps.Notion.Contacts(ctx, stringArg(args, "estado"), intArg(args, "dias_sin_contacto"))
	if err != nil {
		return "", err
	}
	if len(contacts) == 0 {
		return "No hay contactos con esos filtros.", nil
	}
	return toJSON(contacts)
}

func (r *Registry) handleUpdateContact(ctx context.Context, args map[string]any) (string, error) {
	in := notion.UpdateContactInput{
		TipoContacto:         stringArg(args, "tipo_contacto"),
		UltimoContacto:       stringArg(args, "ultimo_contacto"),
		FechaProximoContacto: stringArg(args, "fecha_proximo_contacto"),
		Estado:               stringArg(args, "estado"),
	}
	if prox, ok := args["proximo_contacto"].(string); ok {
		in.ProximoContacto = &prox
	}
	if err := r.deps.Notion.UpdateContact(ctx, stringArg(args, "contact_id"), in); err != nil {
		return "", err
	}
	return "✅ Contacto actualizado correctamente.", nil
}
