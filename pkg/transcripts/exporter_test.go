package transcripts

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/pkg/custom"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/logging"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves a canned history in the API's newest-first order,
// paged like the real endpoint.
type fakeFetcher struct {
	messages []*discordgo.Message
	calls    int
	err      error
}

func (f *fakeFetcher) ChannelMessages(_ string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	start := 0
	if beforeID != "" {
		for i, m := range f.messages {
			if m.ID == beforeID {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(f.messages) {
		end = len(f.messages)
	}
	if start >= len(f.messages) {
		return nil, nil
	}
	return f.messages[start:end], nil
}

func message(id, author, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		Content:   content,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Author: &discordgo.User{
			ID:       "user-" + author,
			Username: author,
		},
	}
}

func testTicket() *entities.Ticket {
	return &entities.Ticket{
		ID:          "abc12345",
		GuildID:     "guild-1",
		ChannelID:   "chan-1",
		CreatorID:   "user-alice",
		CreatorName: "alice",
		Reason:      "Billing question",
		Status:      entities.TicketStatusClosed,
		CloseReason: "Resolved",
		CreatedAt:   custom.Now(),
	}
}

func newTestExporter(t *testing.T, fetcher MessageFetcher) *Exporter {
	t.Helper()

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	return NewExporter(l, fetcher, t.TempDir(), "https://support.test/transcripts/")
}

func TestGenerate(t *testing.T) {
	fetcher := &fakeFetcher{
		// Newest first, as the API returns them.
		messages: []*discordgo.Message{
			message("3", "bob", "On it."),
			message("2", "alice", "My card was charged twice."),
			message("1", "alice", "Hello, I need help."),
		},
	}
	e := newTestExporter(t, fetcher)

	url, path, err := e.Generate(context.Background(), testTicket())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://support.test/transcripts/ticket-abc12345-"))
	require.True(t, strings.HasSuffix(url, ".html"))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(body)

	require.Contains(t, got, "Ticket abc12345")
	require.Contains(t, got, "Billing question")
	require.Contains(t, got, "Resolved")

	// Oldest first in the rendered document.
	first := strings.Index(got, "Hello, I need help.")
	last := strings.Index(got, "On it.")
	require.Greater(t, first, 0)
	require.Greater(t, last, first)

	// Participants are listed once each.
	require.Equal(t, 1, strings.Count(got, "Participants: alice, bob"))
}

func TestGenerateEscapesContent(t *testing.T) {
	fetcher := &fakeFetcher{
		messages: []*discordgo.Message{
			message("1", "mallory", `<script>alert("hi")</script>`),
		},
	}
	e := newTestExporter(t, fetcher)

	_, path, err := e.Generate(context.Background(), testTicket())
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(body), `<script>alert`)
	require.Contains(t, string(body), "&lt;script&gt;")
}

func TestGeneratePagesThroughHistory(t *testing.T) {
	fetcher := new(fakeFetcher)
	for i := 0; i < fetchPageSize+5; i++ {
		fetcher.messages = append(fetcher.messages, message(fmt.Sprintf("%d", fetchPageSize+5-i), "alice", fmt.Sprintf("message %d", i)))
	}
	e := newTestExporter(t, fetcher)

	_, path, err := e.Generate(context.Background(), testTicket())
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, fetchPageSize+5, strings.Count(string(body), `<div class="message">`))
}

func TestGenerateEmptyChannel(t *testing.T) {
	e := newTestExporter(t, new(fakeFetcher))

	url, path, err := e.Generate(context.Background(), testTicket())
	require.NoError(t, err)
	require.NotEmpty(t, url)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestGenerateFetchError(t *testing.T) {
	e := newTestExporter(t, &fakeFetcher{err: fmt.Errorf("boom")})

	_, _, err := e.Generate(context.Background(), testTicket())
	require.Error(t, err)
}
