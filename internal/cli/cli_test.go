package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"loadmap/internal/rules"
	"loadmap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rulesFile = filepath.Join("..", "..", "rules", "asce7-22.yml")

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCheck(t *testing.T) {
	out, err := execute(t, "check", "--rules", rulesFile)
	require.NoError(t, err)
	assert.Contains(t, out, "abbreviations: 21")
	assert.Contains(t, out, "categories:    7")
}

func TestCheckJSON(t *testing.T) {
	out, err := execute(t, "check", "--rules", rulesFile, "--format", "json")
	require.NoError(t, err)

	var stats service.RuleStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 21, stats.Abbreviations)
	assert.Empty(t, stats.UnloadedCategories)
}

func TestCheckReportsEveryProblem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
abbrev:
  BED: Sleeping
mappings:
  Sleeping:
    uniform_psf: -1
    code_ref: "x"
  Living:
    uniform_psf: 40
    code_ref: ""
`), 0o644))

	_, err := execute(t, "check", "--rules", path)
	require.Error(t, err)
	var ce *rules.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "uniform_psf must be >= 0")
	assert.Contains(t, err.Error(), "code_ref is required")
}

func TestMap(t *testing.T) {
	out, err := execute(t, "map", "--rules", rulesFile, "bed", "MECH", "ELEC")
	require.NoError(t, err)
	assert.Contains(t, out, "bed\tResidentialSleeping\t30 psf")
	assert.Contains(t, out, "MECH\tunknown (needs review)")
	assert.Contains(t, out, "ELEC\tElectricalRoom\t-\t")
}

func TestMapJSON(t *testing.T) {
	out, err := execute(t, "map", "--rules", rulesFile, "--format", "json", "OFC")
	require.NoError(t, err)

	var mappings []service.LabelMapping
	require.NoError(t, json.Unmarshal([]byte(out), &mappings))
	require.Len(t, mappings, 1)
	require.NotNil(t, mappings[0].Category)
	assert.Equal(t, "Office", *mappings[0].Category)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "check", "--rules", rulesFile, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMapRequiresLabel(t *testing.T) {
	_, err := execute(t, "map", "--rules", rulesFile)
	require.Error(t, err)
}
