package ticketing

import (
	"context"
	"testing"

	"github.com/sproutsbot/sprouts/pkg/entities"
	"github.com/sproutsbot/sprouts/pkg/logging"
	"github.com/stretchr/testify/require"
)

type panelFixture struct {
	*controllerFixture
	panels  *fakePanelDal
	manager *PanelManager
}

func newPanelFixture(t *testing.T) *panelFixture {
	t.Helper()

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	f := &panelFixture{
		controllerFixture: newControllerFixture(t),
		panels:            newFakePanelDal(),
	}
	f.manager = NewPanelManager(l, f.panels, f.tickets, f.guilds, f.controller, f.platform)
	return f
}

func (f *panelFixture) createPanel(t *testing.T) *entities.Panel {
	t.Helper()

	panel, err := f.manager.CreatePanel(context.Background(), testGuild, "panel-chan", staffActor, "Get Support")
	require.NoError(t, err)
	return panel
}

func TestCreatePanel(t *testing.T) {
	f := newPanelFixture(t)

	panel := f.createPanel(t)
	require.Len(t, panel.ID, 8)
	require.Equal(t, "Get Support", panel.Title)
	require.Equal(t, "panel-chan", panel.ChannelID)
	require.Equal(t, "panel-msg-"+panel.ID, panel.MessageID)
	require.Equal(t, staffActor.UserID, panel.CreatedBy)

	stored, err := f.panels.GetPanel(context.Background(), panel.ID)
	require.NoError(t, err)
	require.Equal(t, panel.MessageID, stored.MessageID)
}

func TestCreatePanelDefaultTitle(t *testing.T) {
	f := newPanelFixture(t)

	panel, err := f.manager.CreatePanel(context.Background(), testGuild, "panel-chan", staffActor, "")
	require.NoError(t, err)
	require.Equal(t, "Support Tickets", panel.Title)
}

func TestCreatePanelRequiresStaff(t *testing.T) {
	f := newPanelFixture(t)

	_, err := f.manager.CreatePanel(context.Background(), testGuild, "panel-chan", plainActor, "")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDeletePanel(t *testing.T) {
	f := newPanelFixture(t)
	panel := f.createPanel(t)

	status, err := f.manager.DeletePanel(context.Background(), testGuild, staffActor, panel.ID)
	require.NoError(t, err)
	require.Equal(t, MessageDeleted, status)

	_, err = f.panels.GetPanel(context.Background(), panel.ID)
	require.Error(t, err)
}

func TestDeletePanelMessageAlreadyGone(t *testing.T) {
	f := newPanelFixture(t)
	panel := f.createPanel(t)
	f.platform.deleteMessageErr = ErrMessageGone

	status, err := f.manager.DeletePanel(context.Background(), testGuild, staffActor, panel.ID)
	require.NoError(t, err)
	require.Equal(t, MessageAlreadyGone, status)

	// The record still goes.
	_, err = f.panels.GetPanel(context.Background(), panel.ID)
	require.Error(t, err)
}

func TestDeletePanelMessageForbidden(t *testing.T) {
	f := newPanelFixture(t)
	panel := f.createPanel(t)
	f.platform.deleteMessageErr = ErrForbidden

	status, err := f.manager.DeletePanel(context.Background(), testGuild, staffActor, panel.ID)
	require.NoError(t, err)
	require.Equal(t, MessageForbidden, status)
}

func TestDeletePanelUnknown(t *testing.T) {
	f := newPanelFixture(t)

	_, err := f.manager.DeletePanel(context.Background(), testGuild, staffActor, "nope")
	require.ErrorIs(t, err, ErrPanelNotFound)
}

func TestDeletePanelCrossGuild(t *testing.T) {
	f := newPanelFixture(t)
	panel := f.createPanel(t)

	// A panel cannot be deleted through another guild.
	_, err := f.manager.DeletePanel(context.Background(), "other-guild", adminActor, panel.ID)
	require.ErrorIs(t, err, ErrPanelNotFound)

	_, err = f.panels.GetPanel(context.Background(), panel.ID)
	require.NoError(t, err)
}

func TestListPanelsPrunesStaleRecords(t *testing.T) {
	f := newPanelFixture(t)
	kept := f.createPanel(t)
	stale := f.createPanel(t)

	// The stale panel's message disappears behind our back.
	require.NoError(t, f.platform.DeleteMessage(context.Background(), stale.ChannelID, stale.MessageID))

	live, pruned, err := f.manager.ListPanels(context.Background(), testGuild)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.Equal(t, kept.ID, live[0].ID)
	require.Equal(t, []string{stale.ID}, pruned)

	// The stale record was removed from the store.
	_, err = f.panels.GetPanel(context.Background(), stale.ID)
	require.Error(t, err)
}

func TestSpawnTicket(t *testing.T) {
	f := newPanelFixture(t)
	panel := f.createPanel(t)

	ticket, err := f.manager.SpawnTicket(context.Background(), panel.ID, plainActor)
	require.NoError(t, err)
	require.Equal(t, panel.ID, ticket.PanelID)
	require.Equal(t, "Support Request", ticket.Reason)
	require.Equal(t, plainActor.UserID, ticket.CreatorID)
}

func TestSpawnTicketRejectsExistingTicket(t *testing.T) {
	f := newPanelFixture(t)
	panel := f.createPanel(t)

	_, err := f.manager.SpawnTicket(context.Background(), panel.ID, plainActor)
	require.NoError(t, err)

	// One open ticket per user through the panel path.
	_, err = f.manager.SpawnTicket(context.Background(), panel.ID, plainActor)
	require.ErrorIs(t, err, ErrExistingTicket)
}

func TestSpawnTicketUnknownPanel(t *testing.T) {
	f := newPanelFixture(t)

	_, err := f.manager.SpawnTicket(context.Background(), "nope", plainActor)
	require.ErrorIs(t, err, ErrPanelNotFound)
}
