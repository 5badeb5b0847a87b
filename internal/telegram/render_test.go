package telegram

import (
	"strings"
	"testing"
)

func TestRenderHTMLBasicFormatting(t *testing.T) {
	got := RenderHTML("texto **fuerte** y *cursiva* con `código`")

	for _, want := range []string{"<b>fuerte</b>", "<i>cursiva</i>", "<code>código</code>"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderHTML() missing %q:\n%s", want, got)
		}
	}
}

func TestRenderHTMLHeadingsAndLists(t *testing.T) {
	got := RenderHTML("## Agenda\n\n- primero\n- segundo")

	if !strings.Contains(got, "<b>Agenda</b>") {
		t.Errorf("heading not bolded:\n%s", got)
	}
	if !strings.Contains(got, "• primero") || !strings.Contains(got, "• segundo") {
		t.Errorf("list items not bulleted:\n%s", got)
	}
	if strings.Contains(got, "<ul>") || strings.Contains(got, "<li>") {
		t.Errorf("list tags leaked:\n%s", got)
	}
}

func TestRenderHTMLStripsUnsupportedTags(t *testing.T) {
	got := RenderHTML("# Título\n\npárrafo normal")

	for _, banned := range []string{"<h1>", "<p>", "</p>"} {
		if strings.Contains(got, banned) {
			t.Errorf("RenderHTML() left %q in:\n%s", banned, got)
		}
	}
	if !strings.Contains(got, "párrafo normal") {
		t.Errorf("text lost:\n%s", got)
	}
}

func TestRenderHTMLKeepsLinks(t *testing.T) {
	got := RenderHTML("mira [esto](https://example.com)")

	if !strings.Contains(got, `<a href="https://example.com">esto</a>`) {
		t.Errorf("link lost:\n%s", got)
	}
}
