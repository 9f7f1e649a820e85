package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohome/internal/core/store"
	"gohome/internal/core/timekeeper"
	"gohome/internal/storage"
	"gohome/internal/ui/preferences"
)

func TestPrintReport(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	events := store.New()
	for _, entry := range []store.AddParams{
		{Name: "a", Duration: 5, Loops: 1},
		{Name: "b", Duration: 3, Loops: 1},
		{Name: "c", Duration: 4, Loops: 1, Order: 1},
	} {
		_, err := events.Add(now, entry)
		require.NoError(t, err)
	}

	var out bytes.Buffer
	printReport(&out, timekeeper.BuildReport(events.Snapshot(), now))

	assert.Equal(t, strings.Join([]string{
		"batch 0  09:00:00 - 09:05:00  a, b",
		"batch 1  09:05:00 - 09:09:00  c",
		"finish at 09:09:00 (in 9m0s)",
		"",
	}, "\n"), out.String())

	out.Reset()
	printReport(&out, timekeeper.Report{})
	assert.Equal(t, "nothing to do\n", out.String())
}

func TestEstimateCommand(t *testing.T) {
	planPath := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte("events:\n  - name: tea\n    duration: 3\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"estimate", "--file", planPath})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "batch 0")
	assert.Contains(t, out.String(), "tea")
	assert.Contains(t, out.String(), "(in 3m0s)")
}

func TestLoadSettingsAppliesChangedFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	saved := preferences.DefaultSettings()
	saved.LogLevel = "debug"
	require.NoError(t, storage.SaveSettingsFile(path, saved))

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&configPath, "config", "", "")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "")
	cmd.Flags().DurationVar(&tick, "tick", 0, "")
	cmd.Flags().BoolVar(&confirm, "confirm", true, "")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "")
	defer func() {
		configPath, listenAddr = "", ""
		confirm = true
	}()
	require.NoError(t, cmd.Flags().Parse([]string{"--config", path, "--listen", "127.0.0.1:9999", "--confirm=false"}))

	settings, err := loadSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", settings.Listen)
	assert.False(t, settings.ConfirmRequired)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, time.Second, settings.TickInterval)
}
