package authz

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FixtureCase is one expected policy decision.
type FixtureCase struct {
	Role   string `yaml:"role"`
	Domain string `yaml:"domain"`
	Object string `yaml:"object"`
	Action string `yaml:"action"`
	Allow  bool   `yaml:"allow"`
	Note   string `yaml:"note,omitempty"`
}

type Mismatch struct {
	Case     FixtureCase `json:"case"`
	Decision bool        `json:"decision"`
	Reason   string      `json:"reason,omitempty"`
}

type fixtureFile struct {
	Cases []FixtureCase `yaml:"cases"`
}

func LoadFixtures(path string) ([]FixtureCase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("authz: read fixtures: %w", err)
	}
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("authz: parse fixtures: %w", err)
	}
	if len(file.Cases) == 0 {
		return nil, configError("fixtures file %s has no cases", path)
	}
	return file.Cases, nil
}

// VerifyFixtures evaluates every case against the loaded policy and returns
// the cases whose decision differs from the expectation.
func (s *Service) VerifyFixtures(ctx context.Context, cases []FixtureCase) []Mismatch {
	var mismatches []Mismatch
	for _, c := range cases {
		req := NewRequest(SubjectForRole(c.Role), DomainFromOrg(c.Domain), c.Object, NormalizeAction(c.Action))
		allowed, err := s.Check(ctx, req)
		if err != nil {
			mismatches = append(mismatches, Mismatch{Case: c, Reason: err.Error()})
			continue
		}
		if allowed != c.Allow {
			mismatches = append(mismatches, Mismatch{Case: c, Decision: allowed})
		}
	}
	return mismatches
}
