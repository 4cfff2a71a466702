package domain

import "time"

type Account struct {
	ID            string
	Username      string
	Email         string // stored lowercase
	PasswordHash  string // argon2id encoded
	FullName      string
	RollNumber    string
	Gender        string
	Bio           string
	AvatarURL     string // empty when no profile asset
	AvatarID      string // blob store external id
	EmailVerified bool
	AdminVerified bool // set by an admin, gates posting rights
	Suspended     bool
	// SuspendedUntil is nil both for "not suspended" and "suspended forever";
	// Suspended disambiguates. Use SuspensionState for a single view.
	SuspendedUntil *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SuspensionState is the tagged view of the Suspended/SuspendedUntil pair so
// callers don't have to cross-check the two fields everywhere.
type SuspensionState struct {
	Suspended bool
	Until     *time.Time // nil while Suspended means indefinite
}

func (a Account) SuspensionState() SuspensionState {
	if !a.Suspended {
		return SuspensionState{}
	}
	return SuspensionState{Suspended: true, Until: a.SuspendedUntil}
}

// Indefinite reports whether the suspension has no end date.
func (s SuspensionState) Indefinite() bool {
	return s.Suspended && s.Until == nil
}

// Expired reports whether a bounded suspension has passed its end.
// Indefinite suspensions never expire.
func (s SuspensionState) Expired(now time.Time) bool {
	return s.Suspended && s.Until != nil && s.Until.Before(now)
}

// SuspensionUnit is the granularity an admin suspends an account in.
type SuspensionUnit string

const (
	UnitHours  SuspensionUnit = "hours"
	UnitDays   SuspensionUnit = "days"
	UnitWeeks  SuspensionUnit = "weeks"
	UnitMonths SuspensionUnit = "months" // 30 days
	UnitYears  SuspensionUnit = "years"  // 365 days
)

func (u SuspensionUnit) Valid() bool {
	switch u {
	case UnitHours, UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	}
	return false
}

// Duration converts n units into a time.Duration.
func (u SuspensionUnit) Duration(n int) time.Duration {
	switch u {
	case UnitHours:
		return time.Duration(n) * time.Hour
	case UnitDays:
		return time.Duration(n) * 24 * time.Hour
	case UnitWeeks:
		return time.Duration(n) * 7 * 24 * time.Hour
	case UnitMonths:
		return time.Duration(n) * 30 * 24 * time.Hour
	case UnitYears:
		return time.Duration(n) * 365 * 24 * time.Hour
	}
	return 0
}
