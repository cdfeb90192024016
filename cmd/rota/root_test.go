package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/ttr-scheduler/pkg/scheduler"
)

// writePlan writes a single-position plan with twelve people where a team
// of two swaps every four hours
func writePlan(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("people:\n")
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&b, "  - name: p%02d\n", i)
	}
	b.WriteString("positions:\n  - name: Gate\n    actions: [")
	for h := 0; h < 24; h++ {
		if h > 0 {
			b.WriteString(", ")
		}
		if h%4 == 0 {
			b.WriteString("swap")
		} else {
			b.WriteString("~")
		}
	}
	b.WriteString("]\n    team_sizes: [")
	for h := 0; h < 24; h++ {
		if h > 0 {
			b.WriteString(", ")
		}
		b.WriteString("2")
	}
	b.WriteString("]\n")

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := runCommand(context.Background(), cmd)
	return out.String(), errOut.String(), err
}

func TestRoot_PlansFromYAML(t *testing.T) {
	out, _, err := execute(t, writePlan(t), "--days", "2", "--seed", "7", "--statistics", "--personal", "--teams")
	require.NoError(t, err)

	assert.Contains(t, out, "prior (committed)")
	assert.Contains(t, out, "day-1")
	assert.Contains(t, out, "day-2")
	assert.Contains(t, out, "Gate")
	assert.Contains(t, out, "fairness")
}

func TestRoot_SameSeedSameOutput(t *testing.T) {
	path := writePlan(t)
	first, _, err := execute(t, path, "--seed", "11")
	require.NoError(t, err)
	second, _, err := execute(t, path, "--seed", "11")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRoot_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, writePlan(t), "--write")
	assert.ErrorIs(t, err, scheduler.ErrConfig)

	_, _, err = execute(t, filepath.Join(dir, "rota.xlsx"))
	assert.ErrorIs(t, err, scheduler.ErrConfig)

	_, _, err = execute(t, filepath.Join(dir, "plan.txt"))
	assert.ErrorIs(t, err, scheduler.ErrConfig)

	_, errOut, err := execute(t, writePlan(t), "--days", "0")
	assert.Error(t, err)
	assert.Contains(t, errOut, "rota failed")

	_, errOut, err = execute(t)
	assert.Error(t, err)
	assert.Contains(t, errOut, "accepts 1 arg(s)")

	_, errOut, err = execute(t, writePlan(t), "--bogus")
	assert.Error(t, err)
	assert.Contains(t, errOut, "unknown flag: --bogus")
}

func TestRoot_RunErrorsPrintedOnce(t *testing.T) {
	_, errOut, err := execute(t, writePlan(t), "--days", "0")
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(errOut, "days to plan must be at least 1"))
	assert.NotContains(t, errOut, "Error:")
}

func TestEngineConfig_OnlyChangedFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--ttrn", "11", "--shuffle", "1"}))

	base := scheduler.DefaultConfig()
	base.TTRDay = 6
	opts := &options{ttrNight: 11, ttrDay: scheduler.DefaultTTRDay, shuffle: 1, days: 5, seed: 3}

	cfg := engineConfig(cmd, base, opts)
	assert.Equal(t, 11, cfg.TTRNight)
	assert.Equal(t, 1, cfg.ShuffleCoefficient)
	assert.Equal(t, 6, cfg.TTRDay)
	assert.Equal(t, base.DaysToPlan, cfg.DaysToPlan)
	assert.Equal(t, base.Seed, cfg.Seed)
}
