package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

const cliAuditSource = "cli:peoplectl"

// authFlags describes the caller a command acts as.
type authFlags struct {
	orgID          string
	userID         string
	role           string
	residency      string
	classification string
	correlationID  string
}

func (f *authFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.orgID, "org", "", "Organization UUID (required)")
	cmd.Flags().StringVar(&f.userID, "actor", "", "Acting user UUID (required)")
	cmd.Flags().StringVar(&f.role, "role", "hrAdmin", "Acting role key")
	cmd.Flags().StringVar(&f.residency, "residency", string(security.ResidencyUKOnly), "Data residency zone")
	cmd.Flags().StringVar(&f.classification, "classification", string(security.ClassificationOfficial), "Data classification")
	cmd.Flags().StringVar(&f.correlationID, "correlation-id", "", "Correlation UUID (default: generated)")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("actor")
}

func (f *authFlags) authorization() security.Authorization {
	correlationID := f.correlationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return security.NewAuthorization(
		f.orgID,
		f.userID,
		f.role,
		security.DataResidency(f.residency),
		security.DataClassification(f.classification),
		cliAuditSource,
		correlationID,
	)
}
