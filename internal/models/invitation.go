package models

import (
	"database/sql"
	"time"
)

// InvitationType says whether the invitation joins a user or a group.
type InvitationType string

const (
	InvitationTypeUser  InvitationType = "user"
	InvitationTypeGroup InvitationType = "group"
)

// InvitationLifetime bounds how long an invitation can be used.
type InvitationLifetime string

const (
	LifetimeTenMinutes InvitationLifetime = "10m"
	LifetimeOneHour    InvitationLifetime = "1h"
	LifetimeOneDay     InvitationLifetime = "1d"
	LifetimeUnlimited  InvitationLifetime = "unlimited"
)

// Duration converts the lifetime to a duration. The second return is false
// for unlimited lifetimes.
func (l InvitationLifetime) Duration() (time.Duration, bool) {
	switch l {
	case LifetimeTenMinutes:
		return 10 * time.Minute, true
	case LifetimeOneHour:
		return time.Hour, true
	case LifetimeOneDay:
		return 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Valid reports whether the lifetime is one of the known values.
func (l InvitationLifetime) Valid() bool {
	switch l {
	case LifetimeTenMinutes, LifetimeOneHour, LifetimeOneDay, LifetimeUnlimited:
		return true
	}
	return false
}

// Invitation is a consumable token that joins the bearer to its issuer
// (normal chat) or to a group. MaxUses null means unlimited uses.
type Invitation struct {
	ID             int64              `db:"id" json:"-"`
	UUID           string             `db:"uuid" json:"uuid"`
	InvitationType InvitationType     `db:"invitation_type" json:"invitation_type"`
	Lifetime       InvitationLifetime `db:"lifetime" json:"lifetime"`
	MaxUses        sql.NullInt32      `db:"max_uses" json:"-"`
	UserID         sql.NullInt64      `db:"user_id" json:"-"`
	GroupID        sql.NullInt64      `db:"group_id" json:"-"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// LastUse reports whether consuming the invitation now exhausts it, so the
// row is deleted instead of decremented. Unlimited-use invitations are never
// exhausted.
func (i Invitation) LastUse() bool {
	return i.MaxUses.Valid && i.MaxUses.Int32 <= 1
}

// Expired reports whether the invitation is past its lifetime at the given
// instant.
func (i Invitation) Expired(now time.Time) bool {
	lifetime, finite := i.Lifetime.Duration()
	if !finite {
		return false
	}
	return now.After(i.CreatedAt.Add(lifetime))
}
