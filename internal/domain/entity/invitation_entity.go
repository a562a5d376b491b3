package entity

import "time"

// InvitationType controls how long an invitation token stays usable.
type InvitationType string

const (
	// InvitationOneTime is consumed on first accept.
	InvitationOneTime InvitationType = "one_time"
	// Invitation24Hour can be accepted any number of times within the window.
	Invitation24Hour InvitationType = "24_hour"
)

const invitationWindow = 24 * time.Hour

func (t InvitationType) Valid() bool {
	return t == InvitationOneTime || t == Invitation24Hour
}

// Invitation grants membership on an account to whoever presents its token.
// AccountName is denormalized so a lookup can show the account without a join.
type Invitation struct {
	ID              string
	AccountID       string
	AccountName     string
	Role            Role
	Token           string
	InvitationType  InvitationType
	InvitedByUserID string
	Email           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Active reports whether the invitation is still acceptable at now.
// Both types expire 24 hours after creation.
func (i *Invitation) Active(now time.Time) bool {
	return now.Sub(i.CreatedAt) <= invitationWindow
}
