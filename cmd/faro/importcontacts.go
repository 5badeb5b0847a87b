package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/dvila/faro/internal/notion"
)

// runImportContacts reads a vCard file and creates one Notion contact
// per card. Cards without a name are skipped; individual create
// failures are reported but don't abort the import.
func runImportContacts(ctx context.Context, stdout io.Writer, configPath, vcfPath string) error {
	logger := newLogger(stdout, slog.LevelWarn)

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Notion.Token == "" || cfg.Notion.ContactsDBID == "" {
		return fmt.Errorf("import-contacts requires notion.token and notion.contacts_db_id")
	}

	f, err := os.Open(vcfPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", vcfPath, err)
	}
	defer f.Close()

	client := notion.NewClient(cfg.Notion.Token, notion.Databases{
		Contacts: cfg.Notion.ContactsDBID,
	}, logger)

	dec := vcard.NewDecoder(f)
	imported, skipped, failed := 0, 0, 0
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", vcfPath, err)
		}

		name := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
		if name == "" {
			skipped++
			continue
		}

		company := ""
		if org := card.PreferredValue(vcard.FieldOrganization); org != "" {
			// ORG is semicolon-separated org units; the first one is
			// the company.
			company = strings.TrimSpace(strings.SplitN(org, ";", 2)[0])
		}

		err = client.AddContact(ctx, notion.AddContactInput{
			Persona: name,
			Empresa: company,
		})
		if err != nil {
			fmt.Fprintf(stdout, "✗ %s: %v\n", name, err)
			failed++
			continue
		}
		fmt.Fprintf(stdout, "✓ %s\n", name)
		imported++
	}

	fmt.Fprintf(stdout, "\nImportados %d contactos (%d omitidos, %d fallidos)\n", imported, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d contacts failed to import", failed)
	}
	return nil
}
