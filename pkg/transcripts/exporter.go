// Package transcripts renders a ticket channel's message history to a
// static HTML document that outlives the channel.
package transcripts

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/logging"
)

// fetchPageSize is the Discord API page size for message history.
const fetchPageSize = 100

// MessageFetcher is the slice of the Discord session that the exporter
// needs. *discordgo.Session satisfies it.
type MessageFetcher interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Exporter writes ticket transcripts to a directory served at a public
// base URL.
type Exporter struct {
	// l is the logger.
	l *slog.Logger

	// fetcher reads the channel history.
	fetcher MessageFetcher

	// dir is the directory that transcripts are written to.
	dir string

	// baseURL is the public URL that the directory is served at.
	baseURL string
}

// NewExporter creates a new transcript exporter.
func NewExporter(l *slog.Logger, fetcher MessageFetcher, dir, baseURL string) *Exporter {
	return &Exporter{
		l:       l,
		fetcher: fetcher,
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Generate renders the ticket channel's history and returns the transcript
// URL and the local path it was written to.
func (e *Exporter) Generate(ctx context.Context, ticket *entities.Ticket) (string, string, error) {
	msgs, err := e.collectMessages(ctx, ticket.ChannelID)
	if err != nil {
		return "", "", fmt.Errorf("error collecting messages: %w", err)
	}

	doc := newDocument(ticket, msgs)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("error creating transcript directory: %w", err)
	}

	name := fmt.Sprintf("ticket-%s-%d.html", ticket.ID, time.Now().UTC().Unix())
	path := filepath.Join(e.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("error creating transcript file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.l.Error("Error closing transcript file", slog.String(logging.KeyError, err.Error()))
		}
	}()

	if err := transcriptTemplate.Execute(f, doc); err != nil {
		return "", "", fmt.Errorf("error rendering transcript: %w", err)
	}

	url := e.baseURL + "/" + name
	e.l.Info("Transcript generated",
		slog.String(logging.KeyTicketID, ticket.ID),
		slog.String("path", path))
	return url, path, nil
}

// collectMessages pages through the channel history oldest-first.
func (e *Exporter) collectMessages(ctx context.Context, channelID string) ([]*discordgo.Message, error) {
	var all []*discordgo.Message
	beforeID := ""

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := e.fetcher.ChannelMessages(channelID, fetchPageSize, beforeID, "", "")
		if err != nil {
			return nil, fmt.Errorf("error fetching messages: %w", err)
		}
		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		beforeID = page[len(page)-1].ID

		if len(page) < fetchPageSize {
			break
		}
	}

	// The API returns newest-first; the transcript reads oldest-first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

// document is the template input for a transcript.
type document struct {
	TicketID     string
	Reason       string
	CloseReason  string
	CreatedAt    string
	ClosedAt     string
	Participants []string
	Messages     []documentMessage
}

type documentMessage struct {
	Author      string
	Timestamp   string
	Content     string
	Attachments []string
}

func newDocument(ticket *entities.Ticket, msgs []*discordgo.Message) *document {
	doc := &document{
		TicketID:    ticket.ID,
		Reason:      ticket.Reason,
		CloseReason: ticket.CloseReason,
		CreatedAt:   ticket.CreatedAt.Time().UTC().Format(time.RFC3339),
		ClosedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	seen := make(map[string]bool)
	for _, m := range msgs {
		if m.Author == nil {
			continue
		}

		if !seen[m.Author.Username] {
			seen[m.Author.Username] = true
			doc.Participants = append(doc.Participants, m.Author.Username)
		}

		dm := documentMessage{
			Author:    m.Author.Username,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
			Content:   m.Content,
		}
		for _, a := range m.Attachments {
			dm.Attachments = append(dm.Attachments, a.Filename)
		}
		doc.Messages = append(doc.Messages, dm)
	}
	return doc
}

var transcriptTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Ticket {{.TicketID}}</title>
<style>
body { font-family: sans-serif; background: #36393f; color: #dcddde; margin: 0; }
header { background: #2f3136; padding: 16px 24px; }
header h1 { margin: 0 0 8px; font-size: 18px; }
header p { margin: 2px 0; font-size: 13px; color: #b9bbbe; }
.messages { padding: 16px 24px; }
.message { margin-bottom: 12px; }
.message .author { font-weight: bold; color: #ffffff; }
.message .timestamp { font-size: 11px; color: #72767d; margin-left: 8px; }
.message .content { margin: 2px 0 0; white-space: pre-wrap; }
.message .attachment { font-size: 12px; color: #00aff4; }
</style>
</head>
<body>
<header>
<h1>Ticket {{.TicketID}}</h1>
<p>Reason: {{.Reason}}</p>
<p>Close reason: {{.CloseReason}}</p>
<p>Opened: {{.CreatedAt}} &middot; Closed: {{.ClosedAt}}</p>
<p>Participants: {{range $i, $p := .Participants}}{{if $i}}, {{end}}{{$p}}{{end}}</p>
</header>
<div class="messages">
{{range .Messages}}<div class="message">
<span class="author">{{.Author}}</span><span class="timestamp">{{.Timestamp}}</span>
<p class="content">{{.Content}}</p>
{{range .Attachments}}<p class="attachment">Attachment: {{.}}</p>
{{end}}</div>
{{end}}</div>
</body>
</html>
`))
