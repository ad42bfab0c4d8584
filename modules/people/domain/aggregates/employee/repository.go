package employee

import "context"

// ProfileRepository returns ErrProfileNotFound for missing rows.
type ProfileRepository interface {
	GetByID(ctx context.Context, orgID, profileID string) (*Profile, error)
	GetByUserID(ctx context.Context, orgID, userID string) (*Profile, error)
	FindByEmployeeNumber(ctx context.Context, orgID, employeeNumber string) (*Profile, error)
	Create(ctx context.Context, profile Profile) (*Profile, error)
	Update(ctx context.Context, orgID, profileID string, changes ProfileUpdate) (*Profile, error)
	// LinkToUser assigns userID to the profile identified by employeeNumber.
	// An empty userID unlinks the profile.
	LinkToUser(ctx context.Context, orgID, employeeNumber, userID string) (*Profile, error)
	Delete(ctx context.Context, orgID, profileID string) error
}

// ContractRepository returns ErrContractNotFound for missing rows.
type ContractRepository interface {
	GetByID(ctx context.Context, orgID, contractID string) (*Contract, error)
	GetLatestForUser(ctx context.Context, orgID, userID string) (*Contract, error)
	Create(ctx context.Context, contract Contract) (*Contract, error)
	Update(ctx context.Context, orgID, contractID string, changes ContractUpdate) (*Contract, error)
	Delete(ctx context.Context, orgID, contractID string) error
}
