package project

import (
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestPersistedLayout_Golden(t *testing.T) {
	s := setupTestStore(t, WithClock(fixedClock()))
	layout := s.Documents().Layout()

	_, err := s.SetArchitecture("p1", SetArchitectureInput{
		Description: "Order service",
		Modules: []ModuleSummaryInput{
			{Name: "auth", Description: "handles login", Inputs: []string{"credentials"}, Outputs: []string{"session token"}},
		},
		DataFlow: map[string]DataFlowEntry{
			"auth": {ProvidesTo: []string{"api"}, DataTransformation: "credentials -> session"},
		},
	})
	require.NoError(t, err)

	moduleID, err := s.UpsertModule("p1", ModuleInput{
		Name:          "auth",
		Description:   "handles login and logout",
		Inputs:        []string{"credentials", "mfa code"},
		Outputs:       []string{"session token"},
		Dependencies:  []string{"crypto"},
		Files:         []string{"internal/auth/login.go"},
		UsageExamples: []UsageExample{{Title: "login", Command: "curl -X POST /login"}},
		Notes:         "rate limited",
	})
	require.NoError(t, err)

	script, err := s.SetScript("p1", ScriptInput{
		ScriptName:  "migrate",
		Description: "runs db migrations",
		Usage:       "make migrate",
		Examples:    []string{"make migrate DIR=up"},
		Parameters:  map[string]string{"DIR": "up or down"},
	})
	require.NoError(t, err)

	g := newGoldie(t)

	arch, err := os.ReadFile(layout.ArchitecturePath("p1"))
	require.NoError(t, err)
	g.Assert(t, "architecture", arch)

	mod, err := os.ReadFile(layout.ModulePath("p1", moduleID))
	require.NoError(t, err)
	g.Assert(t, "module", mod)

	scr, err := os.ReadFile(layout.ScriptPath("p1", script.ScriptID))
	require.NoError(t, err)
	g.Assert(t, "script", scr)
}
