package authz

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyFixtures_TestdataPolicy(t *testing.T) {
	cases, err := LoadFixtures(filepath.Join("testdata", "fixtures.yaml"))
	require.NoError(t, err)
	require.Len(t, cases, 5)

	svc := newTestService(t, ModeEnforce)
	require.Empty(t, svc.VerifyFixtures(context.Background(), cases))
}

func TestVerifyFixtures_ReportsMismatch(t *testing.T) {
	svc := newTestService(t, ModeEnforce)
	mismatches := svc.VerifyFixtures(context.Background(), []FixtureCase{
		{Role: "member", Object: "hr.people", Action: "terminate", Allow: true},
	})
	require.Len(t, mismatches, 1)
	require.False(t, mismatches[0].Decision)
}

func TestVerifyFixtures_ShippedPolicy(t *testing.T) {
	cases, err := LoadFixtures(filepath.Join("..", "..", "config", "access", "fixtures.yaml"))
	require.NoError(t, err)

	svc, err := NewService(Config{
		ModelPath:    filepath.Join("..", "..", "config", "access", "model.conf"),
		PolicyPath:   filepath.Join("..", "..", "config", "access", "policy.csv"),
		FlagProvider: NewStaticFlagProvider(ModeEnforce),
	})
	require.NoError(t, err)
	require.Empty(t, svc.VerifyFixtures(context.Background(), cases))
}

func TestLoadFixtures_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cases: []\n"), 0o644))
	_, err := LoadFixtures(path)
	require.Error(t, err)
}
