package process_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/roadtest/internal/logging"
	"github.com/aretw0/roadtest/pkg/adapters/process"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(t *testing.T, name, script string) process.Command {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook tests use sh")
	}
	return process.Command{Name: name, Command: "sh", Args: []string{"-c", script}}
}

func failedReport() *domain.Report {
	return &domain.Report{
		ID:         "r-1",
		Scenario:   "cut-in",
		Repetition: 1,
		Outcome:    domain.OutcomeTimedOut,
		Status:     domain.StatusSuccess,
		GameTime:   12.5,
		Steps:      250,
	}
}

func TestRunner_PassesReportViaEnv(t *testing.T) {
	c := shell(t, "echo", `echo "$ROADTEST_SCENARIO $ROADTEST_OUTCOME $ROADTEST_PASSED $ROADTEST_GAME_TIME $ROADTEST_STEPS"`)
	r := process.NewRunner(process.WithCommands(c))

	res := r.Run(context.Background(), c, failedReport())
	require.NoError(t, res.Err)
	assert.Equal(t, "cut-in timed_out false 12.5 250", res.Output)
}

func TestRunner_ReportJSONAndExtraEnv(t *testing.T) {
	c := shell(t, "json", `printf '%s' "$ROADTEST_REPORT_JSON" | grep -c '"outcome":"timed_out"'; echo "$CHANNEL"`)
	c.Environment = map[string]string{"CHANNEL": "#sim"}
	r := process.NewRunner()

	res := r.Run(context.Background(), c, failedReport())
	require.NoError(t, res.Err)
	assert.Equal(t, "1\n#sim", res.Output)
}

func TestRunner_NonZeroExit(t *testing.T) {
	c := shell(t, "boom", "echo oops >&2; exit 3")
	res := process.NewRunner().Run(context.Background(), c, failedReport())
	require.Error(t, res.Err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Err.Error(), "oops")
}

func TestRunner_Timeout(t *testing.T) {
	c := shell(t, "slow", "sleep 5")
	r := process.NewRunner(process.WithTimeout(100 * time.Millisecond))

	start := time.Now()
	res := r.Run(context.Background(), c, failedReport())
	assert.Error(t, res.Err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_OnlyFailedAndHooks(t *testing.T) {
	dir := t.TempDir()
	always := shell(t, "always", `echo "$ROADTEST_REPORT_ID" >> always.log`)
	onFail := shell(t, "on-fail", `echo "$ROADTEST_REPORT_ID" >> failed.log`)
	onFail.OnlyFailed = true

	var logs bytes.Buffer
	r := process.NewRunner(
		process.WithCommands(always, onFail, shell(t, "broken", "exit 1")),
		process.WithBaseDir(dir),
		process.WithLogger(logging.NewJSONWriter(&logs, 0)),
	)
	hooks := r.Hooks()

	hooks.OnRunComplete(context.Background(), failedReport())
	hooks.OnRunComplete(context.Background(), &domain.Report{ID: "r-2", Outcome: domain.OutcomeSuccess, Status: domain.StatusSuccess})

	data, err := os.ReadFile(filepath.Join(dir, "always.log"))
	require.NoError(t, err)
	assert.Equal(t, "r-1\nr-2\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "failed.log"))
	require.NoError(t, err)
	assert.Equal(t, "r-1\n", string(data))

	assert.Contains(t, logs.String(), `"hook":"broken"`)
}

func TestLoadCommands(t *testing.T) {
	dir := t.TempDir()

	cmds, err := process.LoadCommands(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cmds)

	path := filepath.Join(dir, "hooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hooks:
  - name: notify
    command: ./notify.sh
    args: [--channel, sim]
    only_failed: true
  - command: ./archive.sh
`), 0o644))
	cmds, err = process.LoadCommands(path)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, []string{"--channel", "sim"}, cmds[0].Args)
	assert.True(t, cmds[0].OnlyFailed)
	assert.Equal(t, "./archive.sh", cmds[1].Name)

	jsonPath := filepath.Join(dir, "hooks.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"hooks":[{"name":"x"}]}`), 0o644))
	_, err = process.LoadCommands(jsonPath)
	assert.ErrorContains(t, err, "has no command")
}
