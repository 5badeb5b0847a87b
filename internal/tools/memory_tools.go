package tools

import (
	"context"
)

func (r *Registry) registerMemoryTools() {
	r.Register(&Tool{
		Name: "get_memory",
		Description: "Lee la memoria de largo plazo del agente: contexto sobre el usuario, " +
			"proyectos activos, contactos clave y compromisos importantes. " +
			"Úsalo cuando necesites recordar información de conversaciones anteriores.",
		InputSchema: map[string]any{
			"type": "object", "properties": map[string]any{}, "required": []string{},
		},
		Handler: r.handleGetMemory,
	})

	r.Register(&Tool{
		Name: "update_memory",
		Description: "Actualiza la memoria de largo plazo con información relevante nueva. " +
			"Úsalo cuando el usuario comparta información importante sobre proyectos, " +
			"contactos, compromisos o contexto personal que deba recordarse. " +
			"Escribe el contenido COMPLETO de la memoria, no solo lo nuevo.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"content": map[string]any{
					"type": "string",
					"description": "Contenido completo de la memoria en formato markdown. " +
						"Usa secciones con ## para organizar: " +
						"## Contexto Personal, ## Proyectos Activos, " +
						"## Contactos Clave, ## Compromisos Pendientes, ## Notas",
				},
			},
			"required": []string{"content"},
		},
		Handler: r.handleUpdateMemory,
	})
}

func (r *Registry) handleGetMemory(_ context.Context, _ map[string]any) (string, error) {
	content, err := r.deps.Memory.Get()
	if err != nil {
		return "", err
	}
	if content == "" {
		return "La memoria está vacía todavía.", nil
	}
	return content, nil
}

func (r *Registry) handleUpdateMemory(_ context.Context, args map[string]any) (string, error) {
	if err := r.deps.Memory.Set(stringArg(args, "content")); err != nil {
		return "", err
	}
	return "✅ Memoria actualizada.", nil
}
