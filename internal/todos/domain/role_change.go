package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxReasonLength bounds free-text reasons on role changes and deletions.
const MaxReasonLength = 500

// RoleChange is one append-only entry of the role history. UserID and
// ChangedByID are empty once the referenced identity has been hard deleted.
type RoleChange struct {
	ID          string
	UserID      string
	OldRole     Role
	NewRole     Role
	ChangedByID string
	ChangedAt   time.Time
	Reason      *string
}

func (c RoleChange) IsPromotion() bool { return c.NewRole > c.OldRole }
func (c RoleChange) IsDemotion() bool  { return c.NewRole < c.OldRole }

// Description renders the change, e.g. "USER → ADMIN (promotion)".
func (c RoleChange) Description() string {
	kind := "change"
	switch {
	case c.IsPromotion():
		kind = "promotion"
	case c.IsDemotion():
		kind = "demotion"
	}
	return fmt.Sprintf("%s → %s (%s)", c.OldRole, c.NewRole, kind)
}

// Validate rejects records the audit writer must never see.
func (c RoleChange) Validate() error {
	if !c.OldRole.Valid() || !c.NewRole.Valid() {
		return fmt.Errorf("%w: role change with invalid role", ErrInvariantViolation)
	}
	if c.OldRole == c.NewRole {
		return fmt.Errorf("%w: role change from %s to itself", ErrInvariantViolation, c.OldRole)
	}
	if c.Reason != nil && utf8.RuneCountInString(*c.Reason) > MaxReasonLength {
		return fmt.Errorf("%w: reason longer than %d characters", ErrInvariantViolation, MaxReasonLength)
	}
	return nil
}
