package ticketing

import (
	"context"
	"fmt"
	"sync"

	"github.com/sproutsbot/sprouts/pkg/dataaccess"
	"github.com/sproutsbot/sprouts/pkg/entities"
)

// fakeTicketDal is an in-memory ticket store.
type fakeTicketDal struct {
	mu      sync.Mutex
	tickets map[string]*entities.Ticket
	saveErr error
}

func newFakeTicketDal() *fakeTicketDal {
	return &fakeTicketDal{
		tickets: make(map[string]*entities.Ticket),
	}
}

func (d *fakeTicketDal) SaveTicket(_ context.Context, ticket *entities.Ticket) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.saveErr != nil {
		return d.saveErr
	}
	cp := *ticket
	d.tickets[ticket.ID] = &cp
	return nil
}

func (d *fakeTicketDal) GetTicket(_ context.Context, guildID, ticketID string) (*entities.Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tickets[ticketID]
	if !ok || t.GuildID != guildID {
		return nil, dataaccess.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (d *fakeTicketDal) GetTicketByChannel(_ context.Context, guildID, channelID string) (*entities.Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range d.tickets {
		if t.GuildID == guildID && t.ChannelID == channelID && channelID != "" {
			cp := *t
			return &cp, nil
		}
	}
	return nil, dataaccess.ErrNotFound
}

func (d *fakeTicketDal) GetOpenTicketForUser(_ context.Context, guildID, creatorID string) (*entities.Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range d.tickets {
		if t.GuildID == guildID && t.CreatorID == creatorID && t.IsOpen() {
			cp := *t
			return &cp, nil
		}
	}
	return nil, dataaccess.ErrNotFound
}

func (d *fakeTicketDal) CountOpenTickets(_ context.Context, guildID, creatorID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0
	for _, t := range d.tickets {
		if t.GuildID == guildID && t.CreatorID == creatorID && t.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (d *fakeTicketDal) NextTicketNumber(_ context.Context, guildID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	max := 0
	for _, t := range d.tickets {
		if t.GuildID == guildID && t.Number > max {
			max = t.Number
		}
	}
	return max + 1, nil
}

func (d *fakeTicketDal) DeleteTicket(_ context.Context, guildID, ticketID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tickets[ticketID]
	if !ok || t.GuildID != guildID {
		return dataaccess.ErrNotFound
	}
	delete(d.tickets, ticketID)
	return nil
}

// get returns the stored record without the guild filter, for assertions.
func (d *fakeTicketDal) get(ticketID string) *entities.Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tickets[ticketID]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

// fakeGuildDal is an in-memory guild settings store.
type fakeGuildDal struct {
	mu     sync.Mutex
	guilds map[string]*entities.Guild
}

func newFakeGuildDal() *fakeGuildDal {
	return &fakeGuildDal{
		guilds: make(map[string]*entities.Guild),
	}
}

func (d *fakeGuildDal) SaveGuild(_ context.Context, guild *entities.Guild) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cp := *guild
	d.guilds[guild.ID] = &cp
	return nil
}

func (d *fakeGuildDal) GetGuildByID(_ context.Context, id string) (*entities.Guild, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.guilds[id]
	if !ok {
		return entities.NewGuild(id), nil
	}
	cp := *g
	cp.Ticketing.ApplyDefaults()
	return &cp, nil
}

// fakePanelDal is an in-memory panel store.
type fakePanelDal struct {
	mu     sync.Mutex
	panels map[string]*entities.Panel
}

func newFakePanelDal() *fakePanelDal {
	return &fakePanelDal{
		panels: make(map[string]*entities.Panel),
	}
}

func (d *fakePanelDal) SavePanel(_ context.Context, panel *entities.Panel) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cp := *panel
	d.panels[panel.ID] = &cp
	return nil
}

func (d *fakePanelDal) GetPanel(_ context.Context, panelID string) (*entities.Panel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.panels[panelID]
	if !ok {
		return nil, dataaccess.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (d *fakePanelDal) ListPanels(_ context.Context, guildID string) ([]*entities.Panel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*entities.Panel
	for _, p := range d.panels {
		if p.GuildID == guildID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (d *fakePanelDal) DeletePanel(_ context.Context, panelID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.panels, panelID)
	return nil
}

// fakePlatform records the side-effect requests that the controller issues.
type fakePlatform struct {
	mu sync.Mutex

	nextChannel int

	// created are the channel creation requests, in order.
	created []ChannelCreate

	// missingChannels are channel IDs that ChannelExists reports gone.
	missingChannels map[string]bool

	// deleted are the deleted channel IDs.
	deleted []string

	// notices are the plain notices sent, keyed by channel ID.
	notices map[string][]string

	// grants and revokes are "channelID/userID" pairs.
	grants  []string
	revokes []string

	// missingMessages are "channelID/messageID" keys that MessageExists
	// reports gone.
	missingMessages map[string]bool

	// deleteMessageErr is returned from DeleteMessage when set.
	deleteMessageErr error

	// dms are the user IDs direct-messaged with a close summary.
	dms []string

	// logged are the channel IDs that close summaries were posted to.
	logged []string

	topics  map[string]string
	renames map[string]string
	moves   map[string]string

	createErr  error
	welcomeErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		missingChannels: make(map[string]bool),
		notices:         make(map[string][]string),
		missingMessages: make(map[string]bool),
		topics:          make(map[string]string),
		renames:         make(map[string]string),
		moves:           make(map[string]string),
	}
}

func (p *fakePlatform) CreateTicketChannel(_ context.Context, data ChannelCreate) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.createErr != nil {
		return "", p.createErr
	}
	p.nextChannel++
	p.created = append(p.created, data)
	return fmt.Sprintf("chan-%d", p.nextChannel), nil
}

func (p *fakePlatform) RenameChannel(_ context.Context, channelID, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.renames[channelID] = name
	return nil
}

func (p *fakePlatform) SetChannelTopic(_ context.Context, channelID, topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.topics[channelID] = topic
	return nil
}

func (p *fakePlatform) MoveChannel(_ context.Context, channelID, categoryID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.moves[channelID] = categoryID
	return nil
}

func (p *fakePlatform) DeleteChannel(_ context.Context, channelID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.deleted = append(p.deleted, channelID)
	p.missingChannels[channelID] = true
	return nil
}

func (p *fakePlatform) ChannelExists(_ context.Context, channelID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return !p.missingChannels[channelID], nil
}

func (p *fakePlatform) GrantAccess(_ context.Context, channelID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.grants = append(p.grants, channelID+"/"+userID)
	return nil
}

func (p *fakePlatform) RevokeAccess(_ context.Context, channelID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.revokes = append(p.revokes, channelID+"/"+userID)
	return nil
}

func (p *fakePlatform) SendNotice(_ context.Context, channelID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.notices[channelID] = append(p.notices[channelID], content)
	return nil
}

func (p *fakePlatform) SendWelcomeMessage(_ context.Context, ticket *entities.Ticket, _ *entities.TicketingConfig) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.welcomeErr != nil {
		return "", p.welcomeErr
	}
	return "welcome-" + ticket.ID, nil
}

func (p *fakePlatform) SendPanelMessage(_ context.Context, panel *entities.Panel) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return "panel-msg-" + panel.ID, nil
}

func (p *fakePlatform) DeleteMessage(_ context.Context, channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deleteMessageErr != nil {
		return p.deleteMessageErr
	}
	p.missingMessages[channelID+"/"+messageID] = true
	return nil
}

func (p *fakePlatform) MessageExists(_ context.Context, channelID, messageID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return !p.missingMessages[channelID+"/"+messageID], nil
}

func (p *fakePlatform) NotifyClosed(_ context.Context, userID string, _ *entities.Ticket) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dms = append(p.dms, userID)
	return nil
}

func (p *fakePlatform) LogClosed(_ context.Context, channelID string, _ *entities.Ticket) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logged = append(p.logged, channelID)
	return nil
}

func (p *fakePlatform) deletedChannels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.deleted))
	copy(out, p.deleted)
	return out
}

func (p *fakePlatform) noticesFor(channelID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.notices[channelID]))
	copy(out, p.notices[channelID])
	return out
}

// fakeTranscripts is a canned transcript exporter.
type fakeTranscripts struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeTranscripts) Generate(_ context.Context, ticket *entities.Ticket) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return "https://transcripts.test/" + ticket.ID + ".html", "/tmp/" + ticket.ID + ".html", nil
}

func (f *fakeTranscripts) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}
