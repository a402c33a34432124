package dataaccess

import (
	"errors"
)

const mongoDatabase = "sprouts"

const (
	collectionGuilds  = "guilds"
	collectionTickets = "tickets"
	collectionPanels  = "panels"
)

// ErrNotFound is returned when a record does not exist in the store.
var ErrNotFound = errors.New("record not found")
