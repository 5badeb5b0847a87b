package notion

import (
	"context"
	"fmt"
)

// Contact is a row of the networking contacts database.
type Contact struct {
	ID                   string `json:"id"`
	Persona              string `json:"persona"`
	Empresa              string `json:"empresa"`
	TipoContacto         string `json:"tipo_contacto"`
	Estado               string `json:"estado"`
	UltimoContacto       string `json:"ultimo_contacto,omitempty"`
	ProximoContacto      string `json:"proximo_contacto"`
	FechaProximoContacto string `json:"fecha_proximo_contacto,omitempty"`
}

// AddContactInput holds the fields for a new contact. Only Persona is
// required; UltimoContacto defaults to today and TipoContacto to
// "Conexión".
type AddContactInput struct {
	Persona              string
	Empresa              string
	TipoContacto         string
	UltimoContacto       string
	ProximoContacto      string
	FechaProximoContacto string
}

// AddContact creates a contact in Activo state.
func (c *Client) AddContact(ctx context.Context, in AddContactInput) error {
	tipo := in.TipoContacto
	if tipo == "" {
		tipo = "Conexión"
	}
	ultimo := in.UltimoContacto
	if ultimo == "" {
		ultimo = c.today()
	}
	props := map[string]any{
		"Persona":          titleProp(in.Persona),
		"Empresa":          richTextProp(in.Empresa),
		"Tipo de contacto": selectProp(tipo),
		"Último contacto":  dateProp(ultimo),
		"Estado":           selectProp("Activo"),
	}
	if in.ProximoContacto != "" {
		props["Próximo contacto"] = richTextProp(in.ProximoContacto)
	}
	if in.FechaProximoContacto != "" {
		props["Fecha próximo contacto"] = dateProp(in.FechaProximoContacto)
	}
	if err := c.createPage(ctx, c.dbs.Contacts, props, nil); err != nil {
		return fmt.Errorf("add contact: %w", err)
	}
	return nil
}

// Contacts queries the contacts database, optionally filtered by state
// or by days since the last touch. Results come back by next contact
// date, soonest first.
func (c *Client) Contacts(ctx context.Context, estado string, diasSinContacto int) ([]Contact, error) {
	var filters []map[string]any
	if estado != "" {
		filters = append(filters, map[string]any{
			"property": "Estado", "select": map[string]any{"equals": estado},
		})
	}
	if diasSinContacto > 0 {
		limit := c.now().AddDate(0, 0, -diasSinContacto).Format("2006-01-02")
		filters = append(filters, map[string]any{
			"property": "Último contacto", "date": map[string]any{"before": limit},
		})
	}

	body := map[string]any{
		"page_size": 100,
		"sorts": []any{
			map[string]any{"property": "Fecha próximo contacto", "direction": "ascending"},
		},
	}
	if f := andFilter(filters); f != nil {
		body["filter"] = f
	}

	resp, err := c.queryDatabase(ctx, c.dbs.Contacts, body)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}

	contacts := make([]Contact, 0, len(resp.Results))
	for _, p := range resp.Results {
		contacts = append(contacts, Contact{
			ID:                   p.ID,
			Persona:              p.Properties["Persona"].text(),
			Empresa:              p.Properties["Empresa"].text(),
			TipoContacto:         p.Properties["Tipo de contacto"].selectName(),
			Estado:               p.Properties["Estado"].selectName(),
			UltimoContacto:       p.Properties["Último contacto"].dateStart(),
			ProximoContacto:      p.Properties["Próximo contacto"].text(),
			FechaProximoContacto: p.Properties["Fecha próximo contacto"].dateStart(),
		})
	}
	return contacts, nil
}

// UpdateContactInput holds the fields to change on a contact. Zero
// values are left untouched, except that setting TipoContacto also
// refreshes Último contacto to today when no date is given.
type UpdateContactInput struct {
	TipoContacto         string
	UltimoContacto       string
	ProximoContacto      *string
	FechaProximoContacto string
	Estado               string
}

// UpdateContact patches a contact's fields by page ID.
func (c *Client) UpdateContact(ctx context.Context, contactID string, in UpdateContactInput) error {
	props := map[string]any{}
	if in.TipoContacto != "" {
		props["Tipo de contacto"] = selectProp(in.TipoContacto)
	}
	if in.UltimoContacto != "" || in.TipoContacto != "" {
		ultimo := in.UltimoContacto
		if ultimo == "" {
			ultimo = c.today()
		}
		props["Último contacto"] = dateProp(ultimo)
	}
	if in.ProximoContacto != nil {
		props["Próximo contacto"] = richTextProp(*in.ProximoContacto)
	}
	if in.FechaProximoContacto != "" {
		props["Fecha próximo contacto"] = dateProp(in.FechaProximoContacto)
	}
	if in.Estado != "" {
		props["Estado"] = selectProp(in.Estado)
	}
	if err := c.updatePage(ctx, contactID, props); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}
