package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	perrors "github.com/p-blackswan/designstore/internal/errors"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "json": FormatJSON, "YAML": FormatYAML, " yml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("toml")
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)
}

func TestRender_YAML(t *testing.T) {
	arch := ProjectArchitecture{
		ProjectID:   "p1",
		Description: "d",
		Modules:     []ModuleSummary{{ID: "m-1", Name: "auth", Description: "login"}},
		CreatedAt:   "2024-01-01T00:00:00.000Z",
		UpdatedAt:   "2024-01-01T00:00:00.000Z",
	}

	out, err := Render(arch, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "projectId: p1\n")
	assert.Contains(t, string(out), "- id: m-1\n")
	assert.NotContains(t, string(out), "dataFlow")

	var back ProjectArchitecture
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, arch, back)
}

func TestRender_JSONMatchesDisk(t *testing.T) {
	out, err := Render(UsageExample{Title: "a<b"}, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"title\": \"a<b\"\n}", string(out))

	_, err = Render(UsageExample{}, Format("xml"))
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)
}
