package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/logging"
	"github.com/stretchr/testify/require"
)

const testGuild = "guild-1"

var (
	adminActor = Member{UserID: "admin-1", Username: "Admin", Permissions: discordgo.PermissionAdministrator}
	staffActor = Member{UserID: "staff-1", Username: "Staff", RoleIDs: []string{"staff-role"}}
	plainActor = Member{UserID: "user-1", Username: "UserOne"}
	otherActor = Member{UserID: "user-2", Username: "UserTwo"}
)

type controllerFixture struct {
	controller  *Controller
	tickets     *fakeTicketDal
	guilds      *fakeGuildDal
	platform    *fakePlatform
	transcripts *fakeTranscripts
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	f := &controllerFixture{
		tickets:     newFakeTicketDal(),
		guilds:      newFakeGuildDal(),
		platform:    newFakePlatform(),
		transcripts: new(fakeTranscripts),
	}

	guild := entities.NewGuild(testGuild)
	guild.Ticketing.StaffRoleIDs = []string{"staff-role"}
	guild.Ticketing.LogChannelID = "log-chan"
	require.NoError(t, f.guilds.SaveGuild(context.Background(), guild))

	f.controller = NewController(ControllerParams{
		Log:           l,
		Tickets:       f.tickets,
		Guilds:        f.guilds,
		Platform:      f.platform,
		Transcripts:   f.transcripts,
		ConfirmWindow: 50 * time.Millisecond,
		CloseGrace:    20 * time.Millisecond,
	})
	return f
}

func (f *controllerFixture) open(t *testing.T, creator Member) *entities.Ticket {
	t.Helper()

	ticket, err := f.controller.Open(context.Background(), OpenRequest{
		GuildID: testGuild,
		Creator: creator,
		Reason:  "Help needed",
	})
	require.NoError(t, err)
	return ticket
}

func TestOpen(t *testing.T) {
	f := newControllerFixture(t)

	ticket, err := f.controller.Open(context.Background(), OpenRequest{
		GuildID: testGuild,
		Creator: plainActor,
	})
	require.NoError(t, err)

	require.NotEmpty(t, ticket.ID)
	require.Len(t, ticket.ID, 8)
	require.Equal(t, 1, ticket.Number)
	require.Equal(t, plainActor.UserID, ticket.CreatorID)
	require.Equal(t, entities.TicketStatusOpen, ticket.Status)
	require.Equal(t, "No reason provided", ticket.Reason)
	require.Equal(t, "chan-1", ticket.ChannelID)
	require.Equal(t, "welcome-"+ticket.ID, ticket.WelcomeMessageID)

	// The channel request carries the creator and the staff roles.
	require.Len(t, f.platform.created, 1)
	require.Equal(t, plainActor.UserID, f.platform.created[0].CreatorID)
	require.Equal(t, []string{"staff-role"}, f.platform.created[0].StaffRoleIDs)

	// The record is persisted.
	stored := f.tickets.get(ticket.ID)
	require.NotNil(t, stored)
	require.Equal(t, ticket.ChannelID, stored.ChannelID)
}

func TestOpenNumbersAreSequential(t *testing.T) {
	f := newControllerFixture(t)

	first := f.open(t, plainActor)
	second := f.open(t, otherActor)

	require.Equal(t, 1, first.Number)
	require.Equal(t, 2, second.Number)
	require.NotEqual(t, first.ID, second.ID)
}

func TestOpenLimit(t *testing.T) {
	f := newControllerFixture(t)

	guild, err := f.guilds.GetGuildByID(context.Background(), testGuild)
	require.NoError(t, err)
	guild.Ticketing.MaxTicketsPerUser = 2
	require.NoError(t, f.guilds.SaveGuild(context.Background(), guild))

	f.open(t, plainActor)
	f.open(t, plainActor)

	_, err = f.controller.Open(context.Background(), OpenRequest{
		GuildID: testGuild,
		Creator: plainActor,
	})
	require.ErrorIs(t, err, ErrTicketLimitReached)

	// No third channel was created.
	require.Len(t, f.platform.created, 2)
}

func TestOpenLimitDefaultTen(t *testing.T) {
	f := newControllerFixture(t)

	for i := 0; i < entities.DefaultMaxTicketsPerUser; i++ {
		f.open(t, plainActor)
	}

	_, err := f.controller.Open(context.Background(), OpenRequest{
		GuildID: testGuild,
		Creator: plainActor,
	})
	require.ErrorIs(t, err, ErrTicketLimitReached)
}

func TestOpenWelcomeFailureKeepsTicket(t *testing.T) {
	f := newControllerFixture(t)
	f.platform.welcomeErr = context.DeadlineExceeded

	ticket, err := f.controller.Open(context.Background(), OpenRequest{
		GuildID: testGuild,
		Creator: plainActor,
	})
	require.NoError(t, err)
	require.Empty(t, ticket.WelcomeMessageID)
	require.NotNil(t, f.tickets.get(ticket.ID))
}

func TestClaim(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	got, err := f.controller.Claim(context.Background(), testGuild, ticket.ChannelID, staffActor)
	require.NoError(t, err)
	require.Equal(t, staffActor.UserID, got.ClaimedBy)
	require.False(t, got.ClaimedAt.IsZero())

	// Claiming is exclusive.
	_, err = f.controller.Claim(context.Background(), testGuild, ticket.ChannelID, adminActor)
	require.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaimRequiresStaff(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.Claim(context.Background(), testGuild, ticket.ChannelID, plainActor)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestClaimUnknownChannel(t *testing.T) {
	f := newControllerFixture(t)

	_, err := f.controller.Claim(context.Background(), testGuild, "not-a-ticket", staffActor)
	require.ErrorIs(t, err, ErrInvalidChannel)
}

func TestUnclaim(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.Unclaim(context.Background(), testGuild, ticket.ChannelID, staffActor)
	require.ErrorIs(t, err, ErrNotClaimed)

	_, err = f.controller.Claim(context.Background(), testGuild, ticket.ChannelID, staffActor)
	require.NoError(t, err)

	got, err := f.controller.Unclaim(context.Background(), testGuild, ticket.ChannelID, staffActor)
	require.NoError(t, err)
	require.Empty(t, got.ClaimedBy)
}

func TestTransfer(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	got, err := f.controller.Transfer(context.Background(), testGuild, ticket.ChannelID, plainActor, otherActor.UserID)
	require.NoError(t, err)
	require.Equal(t, otherActor.UserID, got.CreatorID)

	// The new owner gains access and the old owner loses it.
	require.Contains(t, f.platform.grants, ticket.ChannelID+"/"+otherActor.UserID)
	require.Contains(t, f.platform.revokes, ticket.ChannelID+"/"+plainActor.UserID)
}

func TestTransferRequiresCreatorOrStaff(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.Transfer(context.Background(), testGuild, ticket.ChannelID, otherActor, otherActor.UserID)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestConfirmClose(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.RequestClose(context.Background(), testGuild, ticket.ChannelID, plainActor, "All sorted")
	require.NoError(t, err)

	// The ticket is untouched until the confirmation lands.
	require.Equal(t, entities.TicketStatusOpen, f.tickets.get(ticket.ID).Status)

	got, err := f.controller.ConfirmClose(context.Background(), testGuild, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, entities.TicketStatusClosed, got.Status)
	require.Equal(t, plainActor.UserID, got.ClosedBy)
	require.Equal(t, "All sorted", got.CloseReason)
	require.False(t, got.ForceClosed)
	require.Equal(t, "https://transcripts.test/"+ticket.ID+".html", got.TranscriptURL)

	// The creator is direct-messaged and the close is logged.
	require.Equal(t, []string{plainActor.UserID}, f.platform.dms)
	require.Equal(t, []string{"log-chan"}, f.platform.logged)

	// The channel goes after the grace delay.
	require.Eventually(t, func() bool {
		deleted := f.platform.deletedChannels()
		return len(deleted) == 1 && deleted[0] == ticket.ChannelID
	}, time.Second, 5*time.Millisecond)
}

func TestCloseIsIdempotent(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.RequestClose(context.Background(), testGuild, ticket.ChannelID, plainActor, "")
	require.NoError(t, err)
	_, err = f.controller.ConfirmClose(context.Background(), testGuild, ticket.ID)
	require.NoError(t, err)

	// A racing close path lands on an already-closed ticket and no-ops.
	got, err := f.controller.ForceClose(context.Background(), testGuild, ticket.ChannelID, adminActor, "again")
	require.NoError(t, err)
	require.Equal(t, plainActor.UserID, got.ClosedBy)
	require.False(t, got.ForceClosed)

	require.Equal(t, 1, f.transcripts.callCount())

	// Exactly one deletion is scheduled.
	require.Eventually(t, func() bool {
		return len(f.platform.deletedChannels()) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Len(t, f.platform.deletedChannels(), 1)
}

func TestCancelClose(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.RequestClose(context.Background(), testGuild, ticket.ChannelID, plainActor, "")
	require.NoError(t, err)

	require.NoError(t, f.controller.CancelClose(testGuild, ticket.ID))
	require.Equal(t, entities.TicketStatusOpen, f.tickets.get(ticket.ID).Status)

	// The pending close is gone.
	_, err = f.controller.ConfirmClose(context.Background(), testGuild, ticket.ID)
	require.ErrorIs(t, err, ErrNoPendingClose)
}

func TestCloseRequestExpires(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.RequestClose(context.Background(), testGuild, ticket.ChannelID, plainActor, "")
	require.NoError(t, err)

	// Once the window lapses the request is abandoned and announced.
	require.Eventually(t, func() bool {
		for _, n := range f.platform.noticesFor(ticket.ChannelID) {
			if n == "Close request timed out. No action taken." {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	_, err = f.controller.ConfirmClose(context.Background(), testGuild, ticket.ID)
	require.ErrorIs(t, err, ErrNoPendingClose)
	require.Equal(t, entities.TicketStatusOpen, f.tickets.get(ticket.ID).Status)
}

func TestRequestCloseRequiresCreatorOrStaff(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.RequestClose(context.Background(), testGuild, ticket.ChannelID, otherActor, "")
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.controller.RequestClose(context.Background(), testGuild, ticket.ChannelID, staffActor, "")
	require.NoError(t, err)
}

func TestForceClose(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.ForceClose(context.Background(), testGuild, ticket.ChannelID, staffActor, "spam")
	require.ErrorIs(t, err, ErrPermissionDenied)

	got, err := f.controller.ForceClose(context.Background(), testGuild, ticket.ChannelID, adminActor, "spam")
	require.NoError(t, err)
	require.Equal(t, entities.TicketStatusClosed, got.Status)
	require.True(t, got.ForceClosed)
	require.Equal(t, "Force closed: spam", got.CloseReason)
	require.Equal(t, adminActor.UserID, got.ClosedBy)
}

func TestTranscriptFailureDoesNotBlockClose(t *testing.T) {
	f := newControllerFixture(t)
	f.transcripts.err = context.DeadlineExceeded
	ticket := f.open(t, plainActor)

	got, err := f.controller.ForceClose(context.Background(), testGuild, ticket.ChannelID, adminActor, "")
	require.NoError(t, err)
	require.Equal(t, entities.TicketStatusClosed, got.Status)
	require.Empty(t, got.TranscriptURL)
}

func TestReopen(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	_, err := f.controller.Reopen(context.Background(), testGuild, ticket.ID, staffActor)
	require.ErrorIs(t, err, ErrTicketOpen)

	_, err = f.controller.ForceClose(context.Background(), testGuild, ticket.ChannelID, adminActor, "done")
	require.NoError(t, err)

	// Reopen before the grace deletion fires.
	got, err := f.controller.Reopen(context.Background(), testGuild, ticket.ID, staffActor)
	require.NoError(t, err)
	require.Equal(t, entities.TicketStatusOpen, got.Status)
	require.Equal(t, staffActor.UserID, got.ReopenedBy)
	require.False(t, got.ReopenedAt.IsZero())

	// The close audit trail is retained.
	require.Equal(t, adminActor.UserID, got.ClosedBy)
	require.Equal(t, "Force closed: done", got.CloseReason)
}

func TestReopenRequiresStaff(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)
	_, err := f.controller.ForceClose(context.Background(), testGuild, ticket.ChannelID, adminActor, "")
	require.NoError(t, err)

	_, err = f.controller.Reopen(context.Background(), testGuild, ticket.ID, plainActor)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestReopenChannelGone(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)
	_, err := f.controller.ForceClose(context.Background(), testGuild, ticket.ChannelID, adminActor, "")
	require.NoError(t, err)

	// Wait for the grace deletion to take the channel.
	require.Eventually(t, func() bool {
		return len(f.platform.deletedChannels()) == 1
	}, time.Second, 5*time.Millisecond)

	_, err = f.controller.Reopen(context.Background(), testGuild, ticket.ID, staffActor)
	require.ErrorIs(t, err, ErrChannelGone)
}

func TestReopenUnknownTicket(t *testing.T) {
	f := newControllerFixture(t)

	_, err := f.controller.Reopen(context.Background(), testGuild, "nope", staffActor)
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestRename(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	err := f.controller.Rename(context.Background(), testGuild, ticket.ChannelID, plainActor, "My Issue")
	require.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, f.controller.Rename(context.Background(), testGuild, ticket.ChannelID, staffActor, "My Issue"))
	require.Equal(t, "ticket-my-issue", f.platform.renames[ticket.ChannelID])
}

func TestSetTopic(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	got, err := f.controller.SetTopic(context.Background(), testGuild, ticket.ChannelID, plainActor, "New topic")
	require.NoError(t, err)
	require.Equal(t, "New topic", got.Reason)
	require.Equal(t, "New topic", f.platform.topics[ticket.ChannelID])
}

func TestMove(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	require.NoError(t, f.controller.Move(context.Background(), testGuild, ticket.ChannelID, staffActor, "cat-2"))
	require.Equal(t, "cat-2", f.platform.moves[ticket.ChannelID])
}

func TestAddRemoveMember(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	got, err := f.controller.AddMember(context.Background(), testGuild, ticket.ChannelID, staffActor, otherActor.UserID)
	require.NoError(t, err)
	require.True(t, got.HasMember(otherActor.UserID))
	require.Contains(t, f.platform.grants, ticket.ChannelID+"/"+otherActor.UserID)

	got, err = f.controller.RemoveMember(context.Background(), testGuild, ticket.ChannelID, staffActor, otherActor.UserID)
	require.NoError(t, err)
	require.False(t, got.HasMember(otherActor.UserID))
	require.Contains(t, f.platform.revokes, ticket.ChannelID+"/"+otherActor.UserID)
}

func TestTag(t *testing.T) {
	f := newControllerFixture(t)
	ticket := f.open(t, plainActor)

	got, err := f.controller.Tag(context.Background(), testGuild, ticket.ChannelID, staffActor, "billing", false)
	require.NoError(t, err)
	require.True(t, got.HasTag("billing"))

	got, err = f.controller.Tag(context.Background(), testGuild, ticket.ChannelID, staffActor, "billing", true)
	require.NoError(t, err)
	require.False(t, got.HasTag("billing"))
}

func TestHandleChannelDeleted(t *testing.T) {
	f := newControllerFixture(t)

	// An open ticket loses its record entirely.
	open := f.open(t, plainActor)
	require.NoError(t, f.controller.HandleChannelDeleted(context.Background(), testGuild, open.ChannelID))
	require.Nil(t, f.tickets.get(open.ID))

	// A closed ticket keeps its record but the channel reference clears.
	closed := f.open(t, otherActor)
	_, err := f.controller.ForceClose(context.Background(), testGuild, closed.ChannelID, adminActor, "")
	require.NoError(t, err)
	require.NoError(t, f.controller.HandleChannelDeleted(context.Background(), testGuild, closed.ChannelID))

	stored := f.tickets.get(closed.ID)
	require.NotNil(t, stored)
	require.Empty(t, stored.ChannelID)

	// Non-ticket channels are ignored.
	require.NoError(t, f.controller.HandleChannelDeleted(context.Background(), testGuild, "random-chan"))
}
