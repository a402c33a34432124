// Package messages contains the user facing reply strings for the bot.
package messages

const (
	// ErrUserErrorProcessing is the generic reply when a command fails unexpectedly.
	ErrUserErrorProcessing = "Something went wrong whilst processing your request. Please try again later."

	// ErrNotTicketChannel is the reply when a ticket command is used outside a ticket channel.
	ErrNotTicketChannel = "This command can only be used in a ticket channel."

	// ErrStaffOnly is the reply when a non staff member uses a staff command.
	ErrStaffOnly = "Only staff members can do that."

	// ErrAdminOnly is the reply when a non administrator uses an administrator command.
	ErrAdminOnly = "Only administrators can do that."

	// ErrCreatorOrStaffOnly is the reply when the actor is neither the ticket creator nor staff.
	ErrCreatorOrStaffOnly = "Only the ticket creator or staff can do that."

	// ErrTicketAlreadyClaimed is the reply when claiming a claimed ticket.
	ErrTicketAlreadyClaimed = "This ticket is already claimed."

	// ErrTicketNotClaimed is the reply when releasing an unclaimed ticket.
	ErrTicketNotClaimed = "This ticket is not currently claimed."

	// ErrTicketLimitReached is the reply when the creator is at the open ticket limit.
	ErrTicketLimitReached = "You have reached the maximum number of open tickets. Please close an existing ticket first."

	// ErrExistingTicket is the reply when the creator already holds an open ticket.
	ErrExistingTicket = "You already have an open ticket."

	// ErrPanelNotFound is the reply when a panel ID does not exist.
	ErrPanelNotFound = "No panel found with that ID."

	// ErrTicketNotFound is the reply when a ticket ID does not exist.
	ErrTicketNotFound = "No ticket found with that ID."

	// ErrChannelGone is the reply when a reopen targets a deleted channel.
	ErrChannelGone = "The ticket channel no longer exists, so the ticket cannot be reopened."
)
