package ticketing

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/sproutsbot/sprouts/pkg/entities"
	"golang.org/x/exp/slices"
)

// Member is the acting guild member, as resolved from the gateway event that
// triggered the operation.
type Member struct {
	// UserID is the ID of the member.
	UserID string

	// Username is the member's username.
	Username string

	// RoleIDs are the IDs of the roles that the member holds.
	RoleIDs []string

	// Permissions is the member's computed permission bit set.
	Permissions int64
}

// IsAdmin reports whether the member has the administrator permission.
func IsAdmin(m Member) bool {
	return m.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
}

// IsStaff reports whether the member counts as staff for the guild. Staff is
// anyone with administrative or channel management capability, or any holder
// of a configured staff role. A nil config (unknown guild) is never staff.
func IsStaff(m Member, cfg *entities.TicketingConfig) bool {
	if cfg == nil {
		return false
	}

	if IsAdmin(m) {
		return true
	}

	if m.Permissions&discordgo.PermissionManageChannels == discordgo.PermissionManageChannels {
		return true
	}

	for _, roleID := range cfg.StaffRoleIDs {
		if slices.Contains(m.RoleIDs, roleID) {
			return true
		}
	}
	return false
}
