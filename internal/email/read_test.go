package email

import (
	"strings"
	"testing"
)

const plainMessage = "From: Ana <ana@example.com>\r\n" +
	"To: me@example.com\r\n" +
	"Subject: Hola\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Cuerpo del mensaje.\r\n"

const multipartMessage = "From: Ana <ana@example.com>\r\n" +
	"To: me@example.com\r\n" +
	"Subject: Multiparte\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"frontera\"\r\n" +
	"\r\n" +
	"--frontera\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Versión HTML</p>\r\n" +
	"--frontera\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Versión en texto plano\r\n" +
	"--frontera--\r\n"

const htmlOnlyMessage = "From: Ana <ana@example.com>\r\n" +
	"Subject: Solo HTML\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"frontera\"\r\n" +
	"\r\n" +
	"--frontera\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>Solo hay HTML</p>\r\n" +
	"--frontera--\r\n"

func TestExtractTextBody_Plain(t *testing.T) {
	body, err := extractTextBody(strings.NewReader(plainMessage))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(body, "Cuerpo del mensaje.") {
		t.Errorf("body = %q", body)
	}
}

func TestExtractTextBody_PrefersPlainPart(t *testing.T) {
	body, err := extractTextBody(strings.NewReader(multipartMessage))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(body, "Versión en texto plano") {
		t.Errorf("body = %q, want the text/plain part", body)
	}
	if strings.Contains(body, "<p>") {
		t.Errorf("body should not carry the HTML part: %q", body)
	}
}

func TestExtractTextBody_HTMLFallback(t *testing.T) {
	body, err := extractTextBody(strings.NewReader(htmlOnlyMessage))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(body, "Solo hay HTML") {
		t.Errorf("body = %q", body)
	}
}

func TestConfig_Configured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"complete", Config{Host: "imap.example.com", Username: "me"}, true},
		{"missing host", Config{Username: "me"}, false},
		{"missing user", Config{Host: "imap.example.com"}, false},
		{"empty", Config{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}
