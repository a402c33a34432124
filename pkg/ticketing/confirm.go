package ticketing

import (
	"sync"
	"time"
)

// pendingClose is a close awaiting confirmation from the actor that
// requested it. The deadline timer expires the request into "no action
// taken"; confirming or cancelling stops the timer.
type pendingClose struct {
	guildID   string
	ticketID  string
	channelID string
	actor     Member
	reason    string
	timer     *time.Timer
}

// confirmations tracks the pending close per ticket. At most one close can
// be pending per ticket; a newer request replaces the older one.
type confirmations struct {
	mu       sync.Mutex
	byTicket map[string]*pendingClose
}

func newConfirmations() *confirmations {
	return &confirmations{
		byTicket: make(map[string]*pendingClose),
	}
}

// put registers a pending close, replacing and stopping any existing one for
// the same ticket.
func (c *confirmations) put(p *pendingClose) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.byTicket[p.ticketID]; ok {
		old.timer.Stop()
	}
	c.byTicket[p.ticketID] = p
}

// take removes and returns the pending close for the ticket, stopping its
// timer. It returns nil if none is pending.
func (c *confirmations) take(ticketID string) *pendingClose {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byTicket[ticketID]
	if !ok {
		return nil
	}
	p.timer.Stop()
	delete(c.byTicket, ticketID)
	return p
}

// expire removes the pending close only if it is still the registered one.
// The timer callback races with take; the map is the tie-break.
func (c *confirmations) expire(p *pendingClose) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.byTicket[p.ticketID] != p {
		return false
	}
	delete(c.byTicket, p.ticketID)
	return true
}
