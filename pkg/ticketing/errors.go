package ticketing

import "errors"

var (
	// ErrPermissionDenied is returned when the actor lacks the capability
	// that the operation requires.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidChannel is returned when a ticket operation is invoked
	// against a channel that does not back a ticket.
	ErrInvalidChannel = errors.New("not a ticket channel")

	// ErrAlreadyClaimed is returned when claiming a ticket that already
	// has a claimant.
	ErrAlreadyClaimed = errors.New("ticket already claimed")

	// ErrNotClaimed is returned when releasing a ticket that has no claimant.
	ErrNotClaimed = errors.New("ticket not claimed")

	// ErrTicketLimitReached is returned when the creator is at the guild's
	// open ticket limit.
	ErrTicketLimitReached = errors.New("ticket limit reached")

	// ErrExistingTicket is returned when a panel spawn is attempted by a
	// user that already holds an open ticket.
	ErrExistingTicket = errors.New("user already has an open ticket")

	// ErrPanelNotFound is returned when a panel ID does not exist.
	ErrPanelNotFound = errors.New("panel not found")

	// ErrTicketNotFound is returned when a ticket ID does not exist.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketClosed is returned when an open-only transition is attempted
	// on a closed ticket.
	ErrTicketClosed = errors.New("ticket is closed")

	// ErrTicketOpen is returned when reopening a ticket that is not closed.
	ErrTicketOpen = errors.New("ticket is not closed")

	// ErrChannelGone is returned when the backing channel no longer exists.
	ErrChannelGone = errors.New("ticket channel no longer exists")

	// ErrNoPendingClose is returned when confirming or cancelling a close
	// that was never requested, or whose confirmation window has expired.
	ErrNoPendingClose = errors.New("no close pending for ticket")
)
