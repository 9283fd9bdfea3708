package domain

import (
	"fmt"
	"time"
)

// Deletable is the soft-delete metadata shared by every deletable entity.
// A nil DeletedAt means the row is live.
type Deletable struct {
	DeletedAt   *time.Time
	DeletedByID *string
}

func (d Deletable) IsDeleted() bool { return d.DeletedAt != nil }

// Validate checks that DeletedByID is only ever set alongside DeletedAt.
func (d Deletable) Validate() error {
	if d.DeletedAt == nil && d.DeletedByID != nil {
		return fmt.Errorf("%w: deleted_by_id set without deleted_at", ErrInvariantViolation)
	}
	return nil
}

// MarkDeleted stamps the metadata. DeletedAt is immutable once set, so a
// second call fails instead of moving the timestamp.
func (d *Deletable) MarkDeleted(actorID string, at time.Time) error {
	if d.IsDeleted() {
		return fmt.Errorf("%w: already deleted", ErrInvariantViolation)
	}
	at = at.UTC()
	d.DeletedAt = &at
	if actorID != "" {
		d.DeletedByID = &actorID
	}
	return nil
}
