package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/stepwise/ingest"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEnsemble writes parameter and response CSVs for 30 realizations where
// the response summed over zones is 2*FWL plus a small disturbance.
func writeEnsemble(t *testing.T, constant bool) (params, responses string) {
	t.Helper()
	dir := t.TempDir()

	var p, r strings.Builder
	p.WriteString("ENSEMBLE,REAL,FWL,KH,MULT:PORO\n")
	r.WriteString("ENSEMBLE,REAL,ZONE,FOPT\n")
	for i := 0; i < 30; i++ {
		fwl := float64(i%10) + 0.5*math.Cos(float64(i))
		kh := math.Sin(float64(3 * i))
		poro := math.Cos(float64(7 * i))
		fmt.Fprintf(&p, "iter-0,%d,%g,%g,%g\n", i, fwl, kh, poro)

		total := 2*fwl + 0.05*math.Sin(float64(11*i))
		if constant {
			total = 4
		}
		fmt.Fprintf(&r, "iter-0,%d,A,%g\n", i, total/2)
		fmt.Fprintf(&r, "iter-0,%d,B,%g\n", i, total/2)
	}

	params = filepath.Join(dir, "parameters.csv")
	responses = filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(params, []byte(p.String()), 0644))
	require.NoError(t, os.WriteFile(responses, []byte(r.String()), 0644))
	return params, responses
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("1.0.0")
	assert.Equal(t, "stepwise", cmd.Use)
	assert.Equal(t, "1.0.0", cmd.Version)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "fit")
	assert.Contains(t, names, "expand")
}

func TestFitJSON(t *testing.T) {
	params, responses := writeEnsemble(t, false)

	out, err := execute(t, "fit",
		"--parameters", params,
		"--responses", responses,
		"--ensemble", "iter-0",
		"--response", "FOPT",
		"--max-terms", "2",
		"--log-level", "error",
		"--json",
	)
	require.NoError(t, err)

	var decoded struct {
		Response string `json:"response"`
		Terms    []struct {
			Term        string  `json:"term"`
			Coefficient float64 `json:"coefficient"`
		} `json:"terms"`
		NObs int `json:"n_obs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "FOPT", decoded.Response)
	assert.Equal(t, 30, decoded.NObs)
	require.NotEmpty(t, decoded.Terms)
	assert.Equal(t, "FWL", decoded.Terms[0].Term)
	assert.InDelta(t, 2.0, decoded.Terms[0].Coefficient, 0.05)
}

func TestFitTableWithConfigAndPlots(t *testing.T) {
	params, responses := writeEnsemble(t, false)
	dir := t.TempDir()
	plot := filepath.Join(dir, "pvalues.svg")
	cfgPath := filepath.Join(dir, "stepwise.yaml")
	cfg := fmt.Sprintf(`parameters: %s
responses: %s
ensemble: iter-0
response: FOPT
max_terms: 3
force_in: ["MULT:PORO"]
interaction_degree: 2
filters:
  - name: ZONE
    type: multi
    values: [A, B]
log_level: error
plots:
  p_values: %s
`, params, responses, plot)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	out, err := execute(t, "fit", "--config", cfgPath)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "TERM"))
	assert.True(t, strings.HasPrefix(lines[1], "MULT_PORO"), "forced term comes first")
	assert.Contains(t, out, "FWL")
	assert.Contains(t, out, "response: FOPT")

	info, err := os.Stat(plot)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestFitUnidentifiable(t *testing.T) {
	params, responses := writeEnsemble(t, true)

	out, err := execute(t, "fit",
		"--parameters", params,
		"--responses", responses,
		"--response", "FOPT",
		"--log-level", "error",
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnidentifiable))
	assert.Contains(t, out, unidentifiableMessage)
}

func TestFitInvalidConfiguration(t *testing.T) {
	_, err := execute(t, "fit", "--response", "FOPT")
	var cfgErr *errors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "parameters", cfgErr.Param)
}

func TestExpand(t *testing.T) {
	params, _ := writeEnsemble(t, false)

	out, err := execute(t, "expand", params, "--response", "MULT:PORO", "--degree", "2")
	require.NoError(t, err)
	assert.Equal(t, "FWL\nKH\nFWL*KH\n", out)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want ingest.Filter
	}{
		{"DATE=2020-01-01", ingest.Filter{Name: "DATE", Type: ingest.FilterSingle, Values: []string{"2020-01-01"}}},
		{"ZONE=A,B", ingest.Filter{Name: "ZONE", Type: ingest.FilterMulti, Values: []string{"A", "B"}}},
		{"FOPT=1..10", ingest.Filter{Name: "FOPT", Type: ingest.FilterRange, Values: []string{"1", "10"}}},
	}
	for _, tt := range tests {
		got, err := parseFilter(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"ZONE", "=A", "ZONE="} {
		_, err := parseFilter(bad)
		assert.Error(t, err, bad)
	}
}
