package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/designstore/internal/project"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestID(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("id", "/home/me/proj 1")
	require.NoError(t, err)
	assert.Equal(t, "_home_me_proj_1\n", out)

	out, _, err = h.run("id")
	require.NoError(t, err)
	assert.Equal(t, "_work_demo\n", out)

	_, _, err = h.run("id", "")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, GetExitCode(err))
}

func TestArchAndModules_TextGolden(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("arch", "set", "-d", "Auth service", "-m", "auth=handles login", "-m", "billing=charges cards")
	require.NoError(t, err)
	assert.Contains(t, out, "architecture saved for _work_demo (2 modules)")

	out, _, err = h.run("module", "set", "auth", "-d", "handles login and logout", "--in", "credentials", "--out", "token")
	require.NoError(t, err)
	assert.Contains(t, out, "module auth saved as id-1")

	g := newGoldie(t)

	out, _, err = h.run("arch", "get")
	require.NoError(t, err)
	g.Assert(t, "arch_get", []byte(out))

	out, _, err = h.run("module", "get", "auth")
	require.NoError(t, err)
	g.Assert(t, "module_get", []byte(out))
}

func TestArchSet_KeepsModulesWithoutFlag(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("arch", "set", "-d", "v1", "-m", "auth=login")
	require.NoError(t, err)
	_, _, err = h.run("arch", "set", "-d", "v2")
	require.NoError(t, err)

	out, _, err := h.run("-o", "json", "arch", "get")
	require.NoError(t, err)
	var arch project.ProjectArchitecture
	require.NoError(t, json.Unmarshal([]byte(out), &arch))
	assert.Equal(t, "v2", arch.Description)
	require.Len(t, arch.Modules, 1)
	assert.Equal(t, "id-1", arch.Modules[0].ID)
}

func TestArchSet_FromYAMLFile(t *testing.T) {
	h := newHarness(t)

	input := `description: Pipeline
modules:
  - name: ingest
    description: reads events
    inputs: [kafka]
dataFlow:
  ingest:
    providesTo: [store]
`
	path := filepath.Join(t.TempDir(), "arch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(input), 0o644))

	_, _, err := h.run("arch", "set", "--from", path)
	require.NoError(t, err)

	out, _, err := h.run("-o", "yaml", "arch", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "description: Pipeline\n")
	assert.Contains(t, out, "- kafka\n")

	out, _, err = h.run("arch", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "Data flow:\n  ingest\n    provides to: store\n")
}

func TestArchGet_NotFound(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("arch", "get")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
}

func TestModuleSet_WithoutArchitectureWarns(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("module", "set", "auth", "-d", "login")
	require.NoError(t, err)
	assert.Contains(t, stderr, "has no architecture")

	out, _, err := h.run("module", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "auth")

	_, _, err = h.run("module", "get", "auth")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
}

func TestModuleSet_JSONOutputKeepsModuleOutputs(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("arch", "set", "-d", "svc", "-m", "auth=login")
	require.NoError(t, err)

	out, _, err := h.run("-o", "json", "module", "set", "auth", "-d", "login", "--out", "token")
	require.NoError(t, err)
	var saved map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	assert.Equal(t, map[string]string{"projectId": "_work_demo", "moduleId": "id-1"}, saved)

	out, _, err = h.run("--output", "json", "module", "get", "auth")
	require.NoError(t, err)
	var details project.ModuleDetails
	require.NoError(t, json.Unmarshal([]byte(out), &details))
	assert.Equal(t, []string{"token"}, details.Outputs)
}

func TestModuleDelete(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("module", "delete", "auth")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))

	_, _, err = h.run("arch", "set", "-d", "svc")
	require.NoError(t, err)
	_, _, err = h.run("module", "set", "auth", "-d", "login")
	require.NoError(t, err)

	out, _, err := h.run("module", "delete", "auth")
	require.NoError(t, err)
	assert.Contains(t, out, "module auth deleted")

	out, _, err = h.run("module", "list")
	require.NoError(t, err)
	assert.Equal(t, "No modules.\n", out)

	_, _, err = h.run("module", "delete", "auth")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
}

func TestScripts(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("script", "list")
	require.NoError(t, err)
	assert.Equal(t, "No scripts.\n", out)

	_, _, err = h.run("script", "add", "build.sh", "-d", "builds", "--usage", "./build.sh [target]",
		"--param", "target=make target", "--example", "./build.sh all")
	require.NoError(t, err)

	out, _, err = h.run("script", "get", "build.sh")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "script_get", []byte(out))

	out, _, err = h.run("-o", "json", "script", "list")
	require.NoError(t, err)
	var scripts []project.ScriptDocumentation
	require.NoError(t, json.Unmarshal([]byte(out), &scripts))
	require.Len(t, scripts, 1)
	assert.Equal(t, map[string]string{"target": "make target"}, scripts[0].Parameters)

	_, _, err = h.run("script", "add", "x", "--param", "novalue")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, GetExitCode(err))

	_, _, err = h.run("script", "get", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, GetExitCode(err))
}

func TestJSONOutputEndsWithNewline(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("-o", "json", "arch", "set", "-d", "svc")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}
