package employee

import "strings"

// Identity carries the three keys an employee is known by across subsystems:
// the profile id, the employee number used by leave and absence services,
// and the linked user id.
type Identity struct {
	ProfileID      string
	EmployeeNumber string
	UserID         string
}

// IdentityFromProfile fails with ErrMissingEmployeeNumber when the profile has
// no employee number.
func IdentityFromProfile(p *Profile) (Identity, error) {
	if p == nil {
		return Identity{}, ErrProfileNotFound
	}
	number := strings.TrimSpace(p.EmployeeNumber)
	if number == "" {
		return Identity{}, ErrMissingEmployeeNumber
	}
	return Identity{
		ProfileID:      p.ID,
		EmployeeNumber: number,
		UserID:         p.UserID,
	}, nil
}

func (i Identity) Linked() bool {
	return i.UserID != ""
}
