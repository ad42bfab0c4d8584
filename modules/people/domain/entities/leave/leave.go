package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	RequestSubmitted RequestStatus = "submitted"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// Balance is keyed by employee number, leave type and year.
type Balance struct {
	EmployeeNumber string
	LeaveType      string
	Year           int
	Entitlement    decimal.Decimal
	Used           decimal.Decimal
	Remaining      decimal.Decimal
}

type Request struct {
	ID             string
	OrgID          string
	EmployeeNumber string
	LeaveType      string
	Status         RequestStatus
	StartDate      time.Time
	EndDate        time.Time
	Days           decimal.Decimal
}

type RequestFilter struct {
	EmployeeNumber string
	Statuses       []RequestStatus
	Year           int
}

type EnsureBalancesResult struct {
	EnsuredBalances []Balance
}
