package domain

import (
	"fmt"
	"strings"
	"time"
)

// Priority is ordered: LOW < MEDIUM < HIGH < URGENT.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

var priorityNames = map[Priority]string{
	PriorityLow:    "LOW",
	PriorityMedium: "MEDIUM",
	PriorityHigh:   "HIGH",
	PriorityUrgent: "URGENT",
}

func (p Priority) Valid() bool { return p >= PriorityLow && p <= PriorityUrgent }

func (p Priority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func ParsePriority(s string) (Priority, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for p, name := range priorityNames {
		if name == want {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown priority %q", ErrInvalidValue, s)
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidValue, s)
	}
	return st, nil
}

const MaxTitleLength = 200

type Todo struct {
	ID           string
	Title        string
	Description  *string
	Priority     Priority
	Status       Status
	DueDate      *time.Time
	OwnerID      string
	IsCompleted  bool
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeleteReason *string

	Deletable
}

// SetStatus moves the todo to status and keeps the completion fields in step:
// entering COMPLETED stamps CompletedAt, leaving it clears both.
func (t *Todo) SetStatus(status Status, now time.Time) {
	if status == StatusCompleted {
		if !t.IsCompleted || t.CompletedAt == nil {
			at := now.UTC()
			t.CompletedAt = &at
		}
		t.IsCompleted = true
	} else {
		t.IsCompleted = false
		t.CompletedAt = nil
	}
	t.Status = status
}

// IsOverdue reports a due date in the past on a todo still open.
func (t Todo) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted || t.Status == StatusCancelled {
		return false
	}
	return t.DueDate.Before(now)
}

// Validate checks the completion and deletion invariants.
func (t Todo) Validate() error {
	if t.IsCompleted && (t.CompletedAt == nil || t.Status != StatusCompleted) {
		return fmt.Errorf("%w: completed todo without completed_at or COMPLETED status", ErrInvariantViolation)
	}
	if !t.IsCompleted && t.Status == StatusCompleted {
		return fmt.Errorf("%w: COMPLETED status without completion flag", ErrInvariantViolation)
	}
	return t.Deletable.Validate()
}

// TodoStats are the counters behind the stats query.
type TodoStats struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Cancelled  int
	Overdue    int
}

// CompletionRate is the completed share in percent, 0 for an empty set.
func (s TodoStats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}
