package absence

import "time"

type Status string

const (
	StatusReported  Status = "REPORTED"
	StatusApproved  Status = "APPROVED"
	StatusCancelled Status = "CANCELLED"
	StatusClosed    Status = "CLOSED"
)

// Absence is an unplanned absence keyed by org and user.
type Absence struct {
	ID        string
	OrgID     string
	UserID    string
	TypeID    string
	Status    Status
	StartDate time.Time
	EndDate   *time.Time
}

// IsOpen reports whether the absence can still be cancelled.
func (a Absence) IsOpen() bool {
	return a.Status != StatusCancelled && a.Status != StatusClosed
}

type Filter struct {
	UserID        string
	IncludeClosed bool
}
