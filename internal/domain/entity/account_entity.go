package entity

import (
	"strings"
	"time"
)

// Account is the aggregate root for the tenancy domain. A personal account is
// created automatically at user registration (its ID equals the user's ID and
// it never carries a slug); team accounts are created explicitly and must have
// a unique slug.
type Account struct {
	ID                 string
	Name               string
	Slug               string // empty for personal accounts
	PersonalAccount    bool
	PrimaryOwnerUserID string
	PublicMetadata     map[string]any
	PrivateMetadata    map[string]any
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CreatedBy          string
	UpdatedBy          string
}

// SlugConsistent reports whether the personal-account/slug invariant holds:
// personal accounts have no slug, team accounts always have one.
func (a *Account) SlugConsistent() bool {
	if a.PersonalAccount {
		return a.Slug == ""
	}
	return a.Slug != ""
}

// NameFromEmail derives a display name for a personal account from the
// local part of the registration email. An absent email yields an empty name.
func NameFromEmail(email string) string {
	if email == "" {
		return ""
	}
	return strings.SplitN(email, "@", 2)[0]
}
