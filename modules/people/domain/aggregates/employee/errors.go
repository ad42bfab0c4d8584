package employee

import "errors"

var (
	ErrProfileNotFound       = errors.New("employee profile not found")
	ErrContractNotFound      = errors.New("employment contract not found")
	ErrMissingEmployeeNumber = errors.New("employee profile has no employee number")
	ErrEmployeeNumberTaken   = errors.New("employee number already exists in org")
)
