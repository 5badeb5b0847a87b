// Package email reads the user's inbox over IMAP so the agent can
// triage mail. The agent never sends email; reading and summarizing is
// the whole surface.
package email

import (
	"io"
	"time"

	"github.com/emersion/go-imap/v2"
)

// Config holds the IMAP account settings, embedded in the top-level
// config under the "imap" YAML key.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

// Configured reports whether the account has the minimum required
// settings to connect.
func (c Config) Configured() bool {
	return c.Host != "" && c.Username != ""
}

// Envelope is the summary metadata for a message, suitable for list
// views.
type Envelope struct {
	// UID is the IMAP unique identifier within the inbox.
	UID uint32

	// Date is the message's Date header.
	Date time.Time

	// From is the sender, formatted as "Name <addr>" or just the address.
	From string

	// Subject is the message subject line.
	Subject string
}

// ListOptions controls message listing.
type ListOptions struct {
	// Limit is the maximum number of messages to return. Default: 10.
	Limit int

	// Unseen restricts the listing to unseen messages only.
	Unseen bool
}

// drainLiteral reads and discards the contents of an IMAP literal
// reader so the stream stays in sync when a section goes unused.
func drainLiteral(r imap.LiteralReader) {
	if r == nil {
		return
	}
	_, _ = io.Copy(io.Discard, r)
}
