package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// maxBodySize is the maximum extracted body size. Larger bodies are
// truncated with a note.
const maxBodySize = 32 * 1024

// maxRawMessageSize is the maximum raw RFC822 message size to buffer
// from the IMAP literal. The rest of the literal is drained to keep
// the stream in sync.
const maxRawMessageSize = 5 * 1024 * 1024

// MessageBody fetches a message by UID and returns its plain text
// body. HTML-only messages fall back to the stripped-tags HTML part.
// Reading marks the message \Seen.
func (c *Client) MessageBody(ctx context.Context, uid uint32) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnected(ctx); err != nil {
		return "", err
	}
	if err := c.selectInbox(); err != nil {
		return "", err
	}

	uidSet := imap.UIDSet{}
	uidSet.AddNum(imap.UID(uid))

	fetchCmd := c.client.Fetch(uidSet, &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{{Peek: false}},
	})

	msg := fetchCmd.Next()
	if msg == nil {
		_ = fetchCmd.Close()
		return "", fmt.Errorf("message UID %d not found", uid)
	}

	var rawBody []byte
	for {
		item := msg.Next()
		if item == nil {
			break
		}
		data, ok := item.(imapclient.FetchItemDataBodySection)
		if !ok {
			continue
		}
		// Consume the literal immediately; msg.Next() advances past
		// unread literals and would lose the body data.
		if data.Literal == nil {
			continue
		}
		var readErr error
		rawBody, readErr = io.ReadAll(io.LimitReader(data.Literal, maxRawMessageSize))
		drainLiteral(data.Literal)
		if readErr != nil {
			c.logger.Debug("error reading body literal", "uid", uid, "error", readErr)
			rawBody = nil
		}
	}
	if err := fetchCmd.Close(); err != nil {
		return "", fmt.Errorf("fetch message UID %d: %w", uid, err)
	}

	if rawBody == nil {
		return "", nil
	}
	body, err := extractTextBody(bytes.NewReader(rawBody))
	if err != nil {
		c.logger.Debug("body parse error", "uid", uid, "error", err)
		return "", nil
	}
	return body, nil
}

// extractTextBody walks the MIME structure and returns the first
// text/plain part, falling back to text/html with tags intact.
//
// go-message's mail.CreateReader and NextPart may return both a valid
// reader AND an error for unknown charsets or transfer encodings.
// Those are non-fatal; the content may be slightly garbled but is
// still useful for triage.
func extractTextBody(r io.Reader) (string, error) {
	mailReader, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", fmt.Errorf("create mail reader: %w", err)
	}
	if mailReader == nil {
		return "", fmt.Errorf("create mail reader: %w", err)
	}

	var htmlBody string
	for {
		part, err := mailReader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return "", fmt.Errorf("next part: %w", err)
		}
		if part == nil {
			continue
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()

		switch contentType {
		case "text/plain":
			return readPart(part.Body)
		case "text/html":
			if htmlBody == "" {
				htmlBody, _ = readPart(part.Body)
			}
		}
	}
	return htmlBody, nil
}

func readPart(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return "", err
	}
	body := string(data)
	if len(data) > maxBodySize {
		body = strings.ToValidUTF8(body[:maxBodySize], "") + "\n[... cuerpo truncado ...]"
	}
	return body, nil
}
